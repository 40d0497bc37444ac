package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/qaforge/healrunner/pkg/core"
	"github.com/qaforge/healrunner/pkg/element"
	"github.com/qaforge/healrunner/pkg/logger"
	"github.com/qaforge/healrunner/pkg/testcase"
)

// Orchestrator runs one test case: strictly sequential steps under a
// per-case deadline, stop on first failure.
type Orchestrator struct {
	exec     *Executor
	store    *element.Store
	deadline time.Duration
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(exec *Executor, store *element.Store, deadline time.Duration) *Orchestrator {
	return &Orchestrator{exec: exec, store: store, deadline: deadline}
}

// RunCase executes the case's steps in order and finalizes a verdict.
// A later step may depend on the DOM state left by an earlier one, so
// steps never run concurrently. A failed step aborts the remainder and
// the verdict is fail; otherwise the verdict is pass, or flaky when any
// step needed a retry. The deadline propagates into every retry loop
// and backoff wait, so the verdict is bounded even when the page hangs.
func (o *Orchestrator) RunCase(ctx context.Context, tc testcase.TestCase) core.TestVerdict {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, o.deadline)
	defer cancel()

	verdict := core.TestVerdict{
		CaseID:    tc.ID,
		Name:      tc.Name,
		StartTime: start,
	}

	for i, step := range tc.Steps {
		var result core.ActionResult
		if step.Kind.NeedsTarget() && !o.store.Has(step.Target) {
			// No point burning the retry budget on an id the inventory
			// never declared.
			result = o.unknownTarget(step)
		} else {
			result = o.exec.Execute(ctx, step)
		}

		verdict.Actions = append(verdict.Actions, result)

		if result.Status == core.ActionFailed {
			verdict.Error = fmt.Sprintf("step %d (%s): %s", i, step.Describe(), result.Error)
			if remaining := len(tc.Steps) - i - 1; remaining > 0 {
				logger.Info("orchestrator: %s: aborting %d remaining steps", tc.ID, remaining)
			}
			break
		}
	}

	verdict.Status = core.VerdictFromActions(verdict.Actions)
	verdict.Duration = time.Since(start)
	return verdict
}

func (o *Orchestrator) unknownTarget(step testcase.Step) core.ActionResult {
	err := core.ErrUnknownElement.WithMessage(
		fmt.Sprintf("element %q not found in candidate store", step.Target))
	logger.Warn("orchestrator: %s", err.Message)
	return core.ActionResult{
		Kind:      step.Kind,
		TargetID:  step.Target,
		Value:     step.Value,
		Status:    core.ActionFailed,
		ErrorKind: core.ErrKindResolutionTimeout,
		Error:     err.Error(),
		StartTime: time.Now(),
	}
}

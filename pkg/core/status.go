package core

// ResolutionStatus is the terminal classification of one resolution attempt.
type ResolutionStatus int

const (
	// Resolved means the top-ranked candidate matched.
	Resolved ResolutionStatus = iota
	// ResolvedWithFallback means a lower-ranked candidate matched after
	// the top-ranked one missed: the self-healing case.
	ResolvedWithFallback
	// Unresolved means no candidate matched within its probe timeout.
	Unresolved
)

// String returns the string representation of ResolutionStatus.
func (s ResolutionStatus) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case ResolvedWithFallback:
		return "resolved-with-fallback"
	case Unresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

// Usable reports whether the resolution produced a live locator.
func (s ResolutionStatus) Usable() bool {
	return s == Resolved || s == ResolvedWithFallback
}

// ActionStatus is the terminal status of one executed action.
type ActionStatus int

const (
	// ActionSuccess means the action succeeded on the first attempt.
	ActionSuccess ActionStatus = iota
	// ActionRetriedSuccess means the action succeeded only after at
	// least one retry. Never collapsed into plain success: the
	// distinction feeds flakiness detection.
	ActionRetriedSuccess
	// ActionFailed means the retry budget was exhausted or the deadline
	// fired.
	ActionFailed
)

// String returns the string representation of ActionStatus.
func (s ActionStatus) String() string {
	switch s {
	case ActionSuccess:
		return "success"
	case ActionRetriedSuccess:
		return "retried-success"
	case ActionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsSuccess reports whether the action ultimately succeeded.
func (s ActionStatus) IsSuccess() bool {
	return s == ActionSuccess || s == ActionRetriedSuccess
}

// VerdictStatus is the overall outcome of one test case run.
type VerdictStatus int

const (
	// VerdictPass means every action succeeded on its first attempt.
	VerdictPass VerdictStatus = iota
	// VerdictFail means at least one action failed terminally.
	VerdictFail
	// VerdictFlaky means no action failed but at least one needed a
	// retry to succeed.
	VerdictFlaky
)

// String returns the string representation of VerdictStatus.
func (s VerdictStatus) String() string {
	switch s {
	case VerdictPass:
		return "pass"
	case VerdictFail:
		return "fail"
	case VerdictFlaky:
		return "flaky"
	default:
		return "unknown"
	}
}

// ErrorKind classifies a terminal action failure for reporting.
type ErrorKind int

const (
	// ErrKindNone means no error.
	ErrKindNone ErrorKind = iota
	// ErrKindResolutionTimeout means no candidate resolved within the
	// retry budget: element absent, renamed, or page never loaded.
	ErrKindResolutionTimeout
	// ErrKindActionError means resolution succeeded but the driver
	// operation itself failed: stale element, interrupted navigation.
	ErrKindActionError
	// ErrKindDeadlineExceeded means the per-test-case deadline fired
	// mid-retry.
	ErrKindDeadlineExceeded
	// ErrKindEvidenceCaptureFailed is best-effort only: logged, never
	// escalated to fail an action.
	ErrKindEvidenceCaptureFailed
)

// String returns the string representation of ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case ErrKindNone:
		return "none"
	case ErrKindResolutionTimeout:
		return "resolution-timeout"
	case ErrKindActionError:
		return "action-error"
	case ErrKindDeadlineExceeded:
		return "deadline-exceeded"
	case ErrKindEvidenceCaptureFailed:
		return "evidence-capture-failed"
	default:
		return "unknown"
	}
}

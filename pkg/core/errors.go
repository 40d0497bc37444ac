package core

import (
	"fmt"
)

// ExecutionError is a structured error carrying the report-level kind
// alongside a machine-readable code and the underlying cause.
type ExecutionError struct {
	Kind    ErrorKind
	Code    string // Machine-readable code: all_candidates_missed, element_detached, etc.
	Message string // Human-readable message
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// WithCause returns a copy of the error with the given cause.
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	return &ExecutionError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message,
		Cause:   cause,
	}
}

// WithMessage returns a copy of the error with a custom message.
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	return &ExecutionError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: msg,
		Cause:   e.Cause,
	}
}

// Predefined errors for the failure classes the engine distinguishes.
var (
	ErrAllCandidatesMissed = &ExecutionError{
		Kind:    ErrKindResolutionTimeout,
		Code:    "all_candidates_missed",
		Message: "no selector candidate matched the live page",
	}
	ErrUnknownElement = &ExecutionError{
		Kind:    ErrKindResolutionTimeout,
		Code:    "unknown_element",
		Message: "element descriptor not found in candidate store",
	}
	ErrNoCandidates = &ExecutionError{
		Kind:    ErrKindResolutionTimeout,
		Code:    "no_candidates",
		Message: "element descriptor has no selector candidates",
	}
	ErrElementDetached = &ExecutionError{
		Kind:    ErrKindActionError,
		Code:    "element_detached",
		Message: "element went away between resolution and action",
	}
	ErrNavigationFailed = &ExecutionError{
		Kind:    ErrKindActionError,
		Code:    "navigation_failed",
		Message: "page navigation failed",
	}
	ErrDeadlineExceeded = &ExecutionError{
		Kind:    ErrKindDeadlineExceeded,
		Code:    "deadline_exceeded",
		Message: "test case deadline exceeded",
	}
	ErrEvidenceCapture = &ExecutionError{
		Kind:    ErrKindEvidenceCaptureFailed,
		Code:    "evidence_capture_failed",
		Message: "could not capture failure evidence",
	}
)

// NewExecutionError creates an ExecutionError with the given parameters.
func NewExecutionError(kind ErrorKind, code, message string) *ExecutionError {
	return &ExecutionError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

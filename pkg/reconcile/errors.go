package reconcile

import (
	"errors"
	"fmt"
)

// Error categories surfaced to callers.
var (
	// ErrInvalidInput indicates a request that cannot be turned into a command:
	// missing required fields, unknown enum values, or malformed PTR data.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConnectionFailure indicates the serverinfo probe exited non-zero.
	// No mutating command is attempted after this error.
	ErrConnectionFailure = errors.New("connection to DNS server failed")

	// ErrExecutionFailure indicates the reconciling command exited non-zero.
	ErrExecutionFailure = errors.New("samba-tool command failed")
)

// FailureError carries the diagnostic of a failed samba-tool invocation.
type FailureError struct {
	// Op is the samba-tool action that failed.
	Op string
	// ExitCode is the process exit code.
	ExitCode int
	// Message is the diagnostic text, usually stderr.
	Message string
	// Err is ErrConnectionFailure or ErrExecutionFailure.
	Err error
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("%v: %s exited %d: %s", e.Err, e.Op, e.ExitCode, e.Message)
}

func (e *FailureError) Unwrap() error {
	return e.Err
}

// invalidInput creates an ErrInvalidInput error for a single field.
func invalidInput(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, fmt.Sprintf(format, args...))
}

// IsInvalidInput returns true if err is a request validation failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConnectionFailure returns true if the probe failed.
func IsConnectionFailure(err error) bool {
	return errors.Is(err, ErrConnectionFailure)
}

// IsExecutionFailure returns true if the reconciling command failed.
func IsExecutionFailure(err error) bool {
	return errors.Is(err, ErrExecutionFailure)
}

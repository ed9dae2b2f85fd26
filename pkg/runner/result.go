// Package runner executes samba-tool commands and captures their outcome.
package runner

import "fmt"

// Outcome labels used in logs and metrics.
const (
	OutcomeNotExecuted = "not_executed"
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
)

// Result is the outcome of running a command. It is tri-state: a command
// is either not executed (dry-run), exited zero, or exited non-zero.
// The zero value is "not executed".
type Result struct {
	Stdout string
	Stderr string

	exitCode int
	executed bool
}

// NotExecuted returns the result of a command skipped by dry-run.
func NotExecuted() Result {
	return Result{}
}

// Exited returns the result of a command that ran to completion.
func Exited(exitCode int, stdout, stderr string) Result {
	return Result{
		Stdout:   stdout,
		Stderr:   stderr,
		exitCode: exitCode,
		executed: true,
	}
}

// ExitCode returns the process exit code. ok is false when the command
// was not executed.
func (r Result) ExitCode() (code int, ok bool) {
	return r.exitCode, r.executed
}

// Executed reports whether a process actually ran.
func (r Result) Executed() bool {
	return r.executed
}

// Succeeded reports whether the command ran and exited zero.
func (r Result) Succeeded() bool {
	return r.executed && r.exitCode == 0
}

// Failed reports whether the command ran and exited non-zero.
func (r Result) Failed() bool {
	return r.executed && r.exitCode != 0
}

// WithStderr returns a copy of r with stderr replaced. The exit status
// is preserved.
func (r Result) WithStderr(stderr string) Result {
	r.Stderr = stderr
	return r
}

// Outcome returns one of OutcomeNotExecuted, OutcomeSuccess, OutcomeFailure.
func (r Result) Outcome() string {
	switch {
	case !r.executed:
		return OutcomeNotExecuted
	case r.exitCode == 0:
		return OutcomeSuccess
	default:
		return OutcomeFailure
	}
}

func (r Result) String() string {
	if !r.executed {
		return "not executed"
	}
	return fmt.Sprintf("exit code %d", r.exitCode)
}

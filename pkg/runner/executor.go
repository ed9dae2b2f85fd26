package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
)

// Output is what an Executor captured from a finished process.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Executor runs an argument vector somewhere: locally, over SSH, or inside
// a container. A non-zero exit is reported in Output, not as an error.
// The error return is reserved for failures to start the process or to
// reach the host it runs on.
type Executor interface {
	Exec(ctx context.Context, argv []string) (Output, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, argv []string) (Output, error)

// Exec calls f.
func (f ExecutorFunc) Exec(ctx context.Context, argv []string) (Output, error) {
	return f(ctx, argv)
}

// LocalExecutor runs commands as child processes of this one.
type LocalExecutor struct {
	logger *slog.Logger
}

// LocalOption is a functional option for configuring the LocalExecutor.
type LocalOption func(*LocalExecutor)

// WithLocalLogger sets a custom logger.
func WithLocalLogger(logger *slog.Logger) LocalOption {
	return func(e *LocalExecutor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewLocalExecutor creates an executor backed by os/exec.
func NewLocalExecutor(opts ...LocalOption) *LocalExecutor {
	e := &LocalExecutor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Exec runs argv[0] with the remaining tokens as arguments. No shell is
// involved, so tokens are passed through unmodified.
func (e *LocalExecutor) Exec(ctx context.Context, argv []string) (Output, error) {
	if len(argv) == 0 {
		return Output{}, errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Output{}, fmt.Errorf("starting %s: %w", argv[0], err)
		}
		out.ExitCode = exitErr.ExitCode()
	}

	e.logger.Debug("local command completed",
		slog.String("tool", argv[0]),
		slog.Int("exit_code", out.ExitCode),
		slog.Int("stdout_len", len(out.Stdout)),
		slog.Int("stderr_len", len(out.Stderr)),
	)

	return out, nil
}

var _ Executor = (*LocalExecutor)(nil)

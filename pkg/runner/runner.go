package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gitlab.bluewillows.net/root/sambadns/pkg/sambatool"
)

// Observer is notified after every command that actually executed.
type Observer func(action sambatool.Action, outcome string, elapsed time.Duration)

// Runner executes built commands and owns the dry-run short circuit.
// Nothing above the Runner checks dry-run on its own.
type Runner struct {
	executor Executor
	logger   *slog.Logger
	observer Observer
}

// Option is a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver registers a callback for executed commands (metrics).
func WithObserver(observer Observer) Option {
	return func(r *Runner) {
		r.observer = observer
	}
}

// New creates a Runner on top of executor.
func New(executor Executor, opts ...Option) *Runner {
	r := &Runner{
		executor: executor,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes cmd once. When dryRun is true no process is started and
// the result is NotExecuted. There are no retries.
func (r *Runner) Run(ctx context.Context, cmd sambatool.Command, dryRun bool) (Result, error) {
	if dryRun {
		r.logger.Debug("dry-run, would have run command",
			slog.String("command", cmd.String()),
		)
		return NotExecuted(), nil
	}

	r.logger.Debug("executing command",
		slog.String("command", cmd.String()),
	)

	start := time.Now()
	out, err := r.executor.Exec(ctx, cmd.Args())
	if err != nil {
		return Result{}, fmt.Errorf("running samba-tool dns %s: %w", cmd.Action(), err)
	}

	result := Exited(out.ExitCode, out.Stdout, out.Stderr)
	if r.observer != nil {
		r.observer(cmd.Action(), result.Outcome(), time.Since(start))
	}

	r.logger.Debug("command completed",
		slog.String("action", cmd.Action().String()),
		slog.Int("exit_code", out.ExitCode),
	)

	return result, nil
}

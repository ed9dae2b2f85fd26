package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"gitlab.bluewillows.net/root/sambadns/pkg/runner"
	"gitlab.bluewillows.net/root/sambadns/pkg/sambatool"
)

// RecordReconciler adds or deletes a single record.
type RecordReconciler struct {
	builder sambatool.Builder
	runner  CommandRunner
	logger  *slog.Logger
}

// NewRecordReconciler creates a RecordReconciler.
func NewRecordReconciler(builder sambatool.Builder, r CommandRunner, logger *slog.Logger) *RecordReconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordReconciler{builder: builder, runner: r, logger: logger}
}

// Plan returns the command Ensure would run. PTR specs are redirected to
// their reverse zone.
func (r *RecordReconciler) Plan(state State, spec RecordSpec) (sambatool.Command, error) {
	var action sambatool.Action
	switch state {
	case StatePresent:
		action = sambatool.ActionAdd
	case StateAbsent:
		action = sambatool.ActionDelete
	default:
		return sambatool.Command{}, invalidInput("state", "must be present or absent, got %q", state)
	}

	record, err := NewRecord(spec)
	if err != nil {
		return sambatool.Command{}, err
	}

	return record.Command(r.builder, action, spec.Server)
}

// Ensure runs exactly one add or delete command. A non-zero exit is
// returned as-is in the result; stderr is not reinterpreted for records.
func (r *RecordReconciler) Ensure(ctx context.Context, state State, spec RecordSpec, dryRun bool) (runner.Result, error) {
	cmd, err := r.Plan(state, spec)
	if err != nil {
		return runner.Result{}, err
	}

	r.logger.Debug("reconciling record",
		slog.String("state", string(state)),
		slog.String("type", string(spec.Type)),
		slog.String("command", cmd.String()),
	)

	result, err := r.runner.Run(ctx, cmd, dryRun)
	if err != nil {
		return runner.Result{}, fmt.Errorf("record %s/%s: %w", spec.Zone, spec.Name, err)
	}
	return result, nil
}

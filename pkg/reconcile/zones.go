package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gitlab.bluewillows.net/root/sambadns/pkg/runner"
	"gitlab.bluewillows.net/root/sambadns/pkg/sambatool"
)

// Diagnostic markers printed by samba-tool for zones that are already in
// the requested state.
const (
	MarkerZoneAlreadyExists = "WERR_DNS_ERROR_ZONE_ALREADY_EXISTS"
	MarkerZoneDoesNotExist  = "WERR_DNS_ERROR_ZONE_DOES_NOT_EXIST"
)

// ZoneReconciler creates or deletes a zone.
//
// Zone changes only take effect after the Samba service reloads its zone
// list; restarting it is left to the caller.
type ZoneReconciler struct {
	builder sambatool.Builder
	runner  CommandRunner
	logger  *slog.Logger
}

// NewZoneReconciler creates a ZoneReconciler.
func NewZoneReconciler(builder sambatool.Builder, r CommandRunner, logger *slog.Logger) *ZoneReconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ZoneReconciler{builder: builder, runner: r, logger: logger}
}

// Plan returns the command Ensure would run.
func (z *ZoneReconciler) Plan(state State, spec ZoneSpec) (sambatool.Command, error) {
	var action sambatool.Action
	switch state {
	case StatePresent:
		action = sambatool.ActionZoneCreate
	case StateAbsent:
		action = sambatool.ActionZoneDelete
	default:
		return sambatool.Command{}, invalidInput("state", "must be present or absent, got %q", state)
	}
	return z.builder.Build(action, sambatool.Operands{Server: spec.Server, Zone: spec.Zone})
}

// Ensure runs zonecreate or zonedelete. Known "already in that state"
// diagnostics are rewritten into a readable message; the exit code is
// left untouched so the result still reads as a failure.
func (z *ZoneReconciler) Ensure(ctx context.Context, state State, spec ZoneSpec, dryRun bool) (runner.Result, error) {
	cmd, err := z.Plan(state, spec)
	if err != nil {
		return runner.Result{}, err
	}

	z.logger.Debug("reconciling zone",
		slog.String("state", string(state)),
		slog.String("command", cmd.String()),
	)

	result, err := z.runner.Run(ctx, cmd, dryRun)
	if err != nil {
		return runner.Result{}, fmt.Errorf("zone %s: %w", spec.Zone, err)
	}

	return normalizeZoneResult(state, spec.Zone, result), nil
}

// normalizeZoneResult rewrites the two idempotency markers in stderr.
func normalizeZoneResult(state State, zone string, result runner.Result) runner.Result {
	switch {
	case state == StatePresent && strings.Contains(result.Stderr, MarkerZoneAlreadyExists):
		return result.WithStderr(fmt.Sprintf("Zone %s already exists", zone))
	case state == StateAbsent && strings.Contains(result.Stderr, MarkerZoneDoesNotExist):
		return result.WithStderr(fmt.Sprintf("Zone %s does not exist", zone))
	default:
		return result
	}
}

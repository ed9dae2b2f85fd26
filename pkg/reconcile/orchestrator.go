package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"gitlab.bluewillows.net/root/sambadns/pkg/runner"
	"gitlab.bluewillows.net/root/sambadns/pkg/sambatool"
)

// ReconcileObserver is notified of every validated request's verdict.
type ReconcileObserver func(function Function, state State, verdict Verdict)

// ProbeObserver is notified of every probe outcome.
type ProbeObserver func(outcome string)

// Orchestrator turns a Request into a probe plus one reconciling command.
type Orchestrator struct {
	toolPath    string
	runner      CommandRunner
	logger      *slog.Logger
	onReconcile ReconcileObserver
	onProbe     ProbeObserver
}

// Option is a functional option for configuring the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithToolPath sets the samba-tool executable path.
func WithToolPath(path string) Option {
	return func(o *Orchestrator) {
		o.toolPath = path
	}
}

// WithReconcileObserver registers a callback for request verdicts.
func WithReconcileObserver(fn ReconcileObserver) Option {
	return func(o *Orchestrator) {
		o.onReconcile = fn
	}
}

// WithProbeObserver registers a callback for probe outcomes.
func WithProbeObserver(fn ProbeObserver) Option {
	return func(o *Orchestrator) {
		o.onProbe = fn
	}
}

// New creates an Orchestrator that runs commands through r.
func New(r CommandRunner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		toolPath: sambatool.DefaultToolPath,
		runner:   r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Probe runs only the connectivity check for server.
func (o *Orchestrator) Probe(ctx context.Context, server, username, password string) (Response, error) {
	builder := o.builder(username, password)
	result, err := NewProbe(builder, o.runner).Check(ctx, server)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrConnectionFailure, err)
		o.observeProbe(runner.OutcomeFailure)
		return Response{Failed: true, Msg: err.Error()}, err
	}
	o.observeProbe(result.Outcome())

	if !result.Succeeded() {
		return o.probeFailure(result)
	}
	return Response{Connection: ConnectionOK, Stdout: result.Stdout}, nil
}

// Apply converges the backend toward req.
//
// The request is validated first; invalid input never reaches a command.
// The probe always executes. A failed probe aborts before any mutating
// command is built. Otherwise exactly one add, delete, zonecreate or
// zonedelete is run, or planned when req.DryRun is set.
func (o *Orchestrator) Apply(ctx context.Context, req Request) (Response, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return Response{Failed: true, Msg: err.Error()}, err
	}

	logger := o.logger.With(
		slog.String("function", string(req.Function)),
		slog.String("state", string(req.State)),
		slog.String("server", req.Server),
		slog.String("zone", req.Zone),
		slog.Bool("dry_run", req.DryRun),
	)

	resp, err := o.apply(ctx, req, logger)
	if o.onReconcile != nil {
		o.onReconcile(req.Function, req.State, resp.Verdict())
	}

	switch resp.Verdict() {
	case VerdictFailed:
		logger.Warn("reconciliation failed", slog.String("msg", resp.Msg))
	case VerdictChanged:
		logger.Info("reconciliation changed backend")
	default:
		logger.Info("reconciliation made no change", slog.String("command", resp.Command))
	}

	return resp, err
}

func (o *Orchestrator) apply(ctx context.Context, req Request, logger *slog.Logger) (Response, error) {
	builder := o.builder(req.Username, req.Password)

	probe, err := NewProbe(builder, o.runner).Check(ctx, req.Server)
	if err != nil {
		o.observeProbe(runner.OutcomeFailure)
		err = fmt.Errorf("%w: %w", ErrConnectionFailure, err)
		return Response{Failed: true, Msg: err.Error()}, err
	}
	o.observeProbe(probe.Outcome())
	if !probe.Succeeded() {
		return o.probeFailure(probe)
	}
	logger.Debug("connection probe succeeded")

	var (
		resp Response
		plan sambatool.Command
		res  runner.Result
	)
	if req.DryRun {
		resp.Connection = ConnectionOK
	}

	switch req.Function {
	case FunctionRecord:
		rr := NewRecordReconciler(builder, o.runner, logger)
		if plan, err = rr.Plan(req.State, req.RecordSpec()); err == nil {
			res, err = rr.Ensure(ctx, req.State, req.RecordSpec(), req.DryRun)
		}
	case FunctionZone:
		zr := NewZoneReconciler(builder, o.runner, logger)
		if plan, err = zr.Plan(req.State, req.ZoneSpec()); err == nil {
			res, err = zr.Ensure(ctx, req.State, req.ZoneSpec(), req.DryRun)
		}
	default:
		err = invalidInput("function", "must be record or zone, got %q", req.Function)
	}
	if err != nil {
		if !IsInvalidInput(err) {
			err = fmt.Errorf("%w: %w", ErrExecutionFailure, err)
		}
		resp.Failed = true
		resp.Msg = err.Error()
		return resp, err
	}

	code, executed := res.ExitCode()
	switch {
	case !executed:
		resp.DryRun = true
		resp.Command = plan.String()
		return resp, nil
	case code == 0:
		resp.Changed = true
		resp.Stdout = res.Stdout
		return resp, nil
	default:
		resp.Failed = true
		resp.Msg = res.Stderr
		return resp, &FailureError{
			Op:       plan.Action().String(),
			ExitCode: code,
			Message:  res.Stderr,
			Err:      ErrExecutionFailure,
		}
	}
}

func (o *Orchestrator) builder(username, password string) sambatool.Builder {
	return sambatool.Builder{
		ToolPath:    o.toolPath,
		Credentials: sambatool.NewCredentials(username, password),
	}
}

func (o *Orchestrator) probeFailure(result runner.Result) (Response, error) {
	code, _ := result.ExitCode()
	return Response{Failed: true, Msg: result.Stderr}, &FailureError{
		Op:       sambatool.ActionServerInfo.String(),
		ExitCode: code,
		Message:  result.Stderr,
		Err:      ErrConnectionFailure,
	}
}

func (o *Orchestrator) observeProbe(outcome string) {
	if o.onProbe != nil {
		o.onProbe(outcome)
	}
}

package reconcile

import (
	"context"

	"gitlab.bluewillows.net/root/sambadns/pkg/runner"
	"gitlab.bluewillows.net/root/sambadns/pkg/sambatool"
)

// CommandRunner executes built commands. *runner.Runner implements it.
type CommandRunner interface {
	Run(ctx context.Context, cmd sambatool.Command, dryRun bool) (runner.Result, error)
}

// Probe verifies that the DNS server answers samba-tool requests.
type Probe struct {
	builder sambatool.Builder
	runner  CommandRunner
}

// NewProbe creates a Probe.
func NewProbe(builder sambatool.Builder, r CommandRunner) *Probe {
	return &Probe{builder: builder, runner: r}
}

// Check runs "serverinfo" against server. It always executes, even when the
// surrounding request is a dry-run. The result is returned uninterpreted.
func (p *Probe) Check(ctx context.Context, server string) (runner.Result, error) {
	cmd, err := p.builder.Build(sambatool.ActionServerInfo, sambatool.Operands{Server: server})
	if err != nil {
		return runner.Result{}, err
	}
	return p.runner.Run(ctx, cmd, false)
}

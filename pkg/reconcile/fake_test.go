package reconcile

import (
	"context"

	"gitlab.bluewillows.net/root/sambadns/pkg/runner"
	"gitlab.bluewillows.net/root/sambadns/pkg/sambatool"
)

// call is one command seen by fakeExecutor.
type call struct {
	args []string
}

// fakeExecutor answers commands by action and records every process it
// pretends to start.
type fakeExecutor struct {
	outputs map[sambatool.Action]runner.Output
	errs    map[sambatool.Action]error
	calls   []call
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		outputs: map[sambatool.Action]runner.Output{},
		errs:    map[sambatool.Action]error{},
	}
}

func (f *fakeExecutor) Exec(_ context.Context, argv []string) (runner.Output, error) {
	f.calls = append(f.calls, call{args: argv})
	action := sambatool.Action(argv[2])
	if err := f.errs[action]; err != nil {
		return runner.Output{}, err
	}
	return f.outputs[action], nil
}

func (f *fakeExecutor) actions() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.args[2])
	}
	return out
}

// last returns the args of the most recent call without the credential flags.
func (f *fakeExecutor) last() []string {
	if len(f.calls) == 0 {
		return nil
	}
	args := f.calls[len(f.calls)-1].args
	return args[:len(args)-2]
}

func testBuilder() sambatool.Builder {
	return sambatool.Builder{
		ToolPath:    "samba-tool",
		Credentials: sambatool.NewCredentials("administrator", "secret"),
	}
}

package reconcile

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"gitlab.bluewillows.net/root/sambadns/pkg/runner"
	"gitlab.bluewillows.net/root/sambadns/pkg/sambatool"
)

func recordRequest() Request {
	return Request{
		State:    StatePresent,
		Function: FunctionRecord,
		Server:   "dc1",
		Zone:     "example.com",
		Name:     "host1",
		Type:     RecordTypeA,
		Data:     "10.0.0.5",
		Username: "administrator",
		Password: "secret",
	}
}

func reachable() *fakeExecutor {
	exec := newFakeExecutor()
	exec.outputs[sambatool.ActionServerInfo] = runner.Output{Stdout: "  dwVersion : 0xece0205"}
	return exec
}

func TestOrchestrator_RecordPresent(t *testing.T) {
	exec := reachable()
	exec.outputs[sambatool.ActionAdd] = runner.Output{Stdout: "Record added successfully\n"}

	resp, err := New(runner.New(exec)).Apply(context.Background(), recordRequest())
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if !resp.Changed || resp.Failed {
		t.Errorf("Apply() = %+v, want changed", resp)
	}
	if resp.Stdout != "Record added successfully\n" {
		t.Errorf("Stdout = %q", resp.Stdout)
	}
	if resp.Verdict() != VerdictChanged {
		t.Errorf("Verdict() = %v, want changed", resp.Verdict())
	}
	if got := exec.actions(); !slices.Equal(got, []string{"serverinfo", "add"}) {
		t.Errorf("actions = %v, want [serverinfo add]", got)
	}
}

func TestOrchestrator_PTRRecord(t *testing.T) {
	exec := reachable()
	exec.outputs[sambatool.ActionAdd] = runner.Output{Stdout: "Record added successfully"}

	req := recordRequest()
	req.Type = RecordTypePTR

	resp, err := New(runner.New(exec)).Apply(context.Background(), req)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !resp.Changed {
		t.Errorf("Apply() = %+v, want changed", resp)
	}

	want := []string{"samba-tool", "dns", "add", "dc1", "0.0.10.in-addr.arpa", "5", "PTR", "host1"}
	if got := exec.last(); !slices.Equal(got, want) {
		t.Errorf("executed %q, want %q", got, want)
	}
}

func TestOrchestrator_ZoneDoesNotExist(t *testing.T) {
	exec := reachable()
	exec.outputs[sambatool.ActionZoneDelete] = runner.Output{
		ExitCode: 255,
		Stderr:   "ERROR(runtime): uncaught exception - (9601, 'WERR_DNS_ERROR_ZONE_DOES_NOT_EXIST')",
	}

	req := Request{State: StateAbsent, Function: FunctionZone, Server: "dc1", Zone: "example.com"}
	resp, err := New(runner.New(exec)).Apply(context.Background(), req)

	if !IsExecutionFailure(err) {
		t.Fatalf("Apply() error = %v, want ErrExecutionFailure", err)
	}
	var failure *FailureError
	if !errors.As(err, &failure) || failure.ExitCode != 255 {
		t.Errorf("Apply() error = %#v, want FailureError with exit 255", err)
	}
	if resp.Changed {
		t.Error("Changed = true, want false")
	}
	if resp.Msg != "Zone example.com does not exist" {
		t.Errorf("Msg = %q", resp.Msg)
	}
	if resp.Verdict() != VerdictFailed {
		t.Errorf("Verdict() = %v, want failed", resp.Verdict())
	}
}

func TestOrchestrator_DryRunUnreachable(t *testing.T) {
	exec := newFakeExecutor()
	exec.outputs[sambatool.ActionServerInfo] = runner.Output{
		ExitCode: 1,
		Stderr:   "Connection to DNS server failed: NT_STATUS_CONNECTION_REFUSED",
	}

	req := recordRequest()
	req.DryRun = true

	var verdicts []Verdict
	o := New(runner.New(exec), WithReconcileObserver(func(_ Function, _ State, v Verdict) {
		verdicts = append(verdicts, v)
	}))
	resp, err := o.Apply(context.Background(), req)

	if !IsConnectionFailure(err) {
		t.Fatalf("Apply() error = %v, want ErrConnectionFailure", err)
	}
	if resp.Changed || !resp.Failed {
		t.Errorf("Apply() = %+v, want failed and unchanged", resp)
	}
	if !strings.Contains(resp.Msg, "NT_STATUS_CONNECTION_REFUSED") {
		t.Errorf("Msg = %q", resp.Msg)
	}
	if got := exec.actions(); !slices.Equal(got, []string{"serverinfo"}) {
		t.Errorf("actions = %v, want only the probe", got)
	}
	if !slices.Equal(verdicts, []Verdict{VerdictFailed}) {
		t.Errorf("observer verdicts = %v", verdicts)
	}
}

func TestOrchestrator_ConnectionFailureBlocksMutation(t *testing.T) {
	exec := newFakeExecutor()
	exec.outputs[sambatool.ActionServerInfo] = runner.Output{ExitCode: 255, Stderr: "NT_STATUS_LOGON_FAILURE"}

	_, err := New(runner.New(exec)).Apply(context.Background(), recordRequest())
	if !IsConnectionFailure(err) {
		t.Fatalf("Apply() error = %v, want ErrConnectionFailure", err)
	}
	if len(exec.calls) != 1 {
		t.Errorf("executed %v, want only the probe", exec.actions())
	}
}

func TestOrchestrator_ProbeTransportError(t *testing.T) {
	exec := newFakeExecutor()
	exec.errs[sambatool.ActionServerInfo] = errors.New("ssh: handshake failed")

	resp, err := New(runner.New(exec)).Apply(context.Background(), recordRequest())
	if !IsConnectionFailure(err) {
		t.Fatalf("Apply() error = %v, want ErrConnectionFailure", err)
	}
	if !resp.Failed || !strings.Contains(resp.Msg, "handshake failed") {
		t.Errorf("Apply() = %+v", resp)
	}
}

func TestOrchestrator_DryRunReachable(t *testing.T) {
	exec := reachable()

	req := Request{Function: FunctionZone, Server: "dc1", Zone: "example.com", Username: "admin", Password: "pw", DryRun: true}
	resp, err := New(runner.New(exec)).Apply(context.Background(), req)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if resp.Connection != ConnectionOK {
		t.Errorf("Connection = %q, want OK", resp.Connection)
	}
	if resp.Changed || resp.Failed || !resp.DryRun {
		t.Errorf("Apply() = %+v, want unchanged dry-run", resp)
	}
	if resp.Verdict() != VerdictUnchanged {
		t.Errorf("Verdict() = %v", resp.Verdict())
	}
	if want := "samba-tool dns zonecreate dc1 example.com --username=admin --password=********"; resp.Command != want {
		t.Errorf("Command = %q, want %q", resp.Command, want)
	}
	if got := exec.actions(); !slices.Equal(got, []string{"serverinfo"}) {
		t.Errorf("actions = %v, want the probe only", got)
	}
}

func TestOrchestrator_ExecutionFailure(t *testing.T) {
	exec := reachable()
	exec.outputs[sambatool.ActionDelete] = runner.Output{ExitCode: 255, Stderr: "ERROR: Record does not exist"}

	req := recordRequest()
	req.State = StateAbsent

	resp, err := New(runner.New(exec)).Apply(context.Background(), req)
	if !IsExecutionFailure(err) {
		t.Fatalf("Apply() error = %v, want ErrExecutionFailure", err)
	}
	if resp.Msg != "ERROR: Record does not exist" || resp.Changed {
		t.Errorf("Apply() = %+v", resp)
	}
}

func TestOrchestrator_InvalidInputRunsNothing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{name: "missing name", mutate: func(r *Request) { r.Name = "" }},
		{name: "missing data", mutate: func(r *Request) { r.Data = "" }},
		{name: "missing server", mutate: func(r *Request) { r.Server = "" }},
		{name: "missing zone", mutate: func(r *Request) { r.Zone = "" }},
		{name: "missing function", mutate: func(r *Request) { r.Function = "" }},
		{name: "bad function", mutate: func(r *Request) { r.Function = "view" }},
		{name: "bad state", mutate: func(r *Request) { r.State = "latest" }},
		{name: "bad type", mutate: func(r *Request) { r.Type = "NS" }},
		{name: "malformed PTR", mutate: func(r *Request) { r.Type = RecordTypePTR; r.Data = "10.0.0" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := reachable()
			req := recordRequest()
			tt.mutate(&req)

			resp, err := New(runner.New(exec)).Apply(context.Background(), req)
			if !IsInvalidInput(err) {
				t.Fatalf("Apply() error = %v, want ErrInvalidInput", err)
			}
			if !resp.Failed || resp.Changed {
				t.Errorf("Apply() = %+v", resp)
			}
			if len(exec.calls) != 0 {
				t.Errorf("executed %v, want nothing", exec.actions())
			}
		})
	}
}

func TestOrchestrator_ToolPathAndCredentials(t *testing.T) {
	exec := reachable()
	exec.outputs[sambatool.ActionZoneCreate] = runner.Output{Stdout: "Zone created"}

	o := New(runner.New(exec), WithToolPath("/opt/samba/bin/samba-tool"))
	req := Request{Function: FunctionZone, Server: "dc1", Zone: "lab.example.com", Username: "dnsadmin", Password: "pw"}
	if _, err := o.Apply(context.Background(), req); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	for _, c := range exec.calls {
		if c.args[0] != "/opt/samba/bin/samba-tool" {
			t.Errorf("tool = %q", c.args[0])
		}
		tail := c.args[len(c.args)-2:]
		if !slices.Equal(tail, []string{"--username=dnsadmin", "--password=pw"}) {
			t.Errorf("credential flags = %q", tail)
		}
	}
}

func TestOrchestrator_Probe(t *testing.T) {
	var outcomes []string
	o := New(runner.New(reachable()), WithProbeObserver(func(outcome string) {
		outcomes = append(outcomes, outcome)
	}))

	resp, err := o.Probe(context.Background(), "dc1", "admin", "pw")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if resp.Connection != ConnectionOK || resp.Changed {
		t.Errorf("Probe() = %+v", resp)
	}
	if !slices.Equal(outcomes, []string{runner.OutcomeSuccess}) {
		t.Errorf("probe outcomes = %v", outcomes)
	}
}

func TestRequest_Normalize(t *testing.T) {
	req := Request{Function: " Record ", Type: "ptr"}
	req.Normalize()

	if req.State != StatePresent {
		t.Errorf("State = %q, want present", req.State)
	}
	if req.Function != FunctionRecord {
		t.Errorf("Function = %q, want record", req.Function)
	}
	if req.Type != RecordTypePTR {
		t.Errorf("Type = %q, want PTR", req.Type)
	}

	empty := Request{Function: FunctionRecord}
	empty.Normalize()
	if empty.Type != DefaultRecordType {
		t.Errorf("Type = %q, want %q", empty.Type, DefaultRecordType)
	}
}

func TestRecordType_IsValid(t *testing.T) {
	for _, rt := range RecordTypes {
		if !rt.IsValid() {
			t.Errorf("%s should be valid", rt)
		}
	}
	for _, rt := range []RecordType{"NS", "SOA", "a", "", "BOGUS"} {
		if rt.IsValid() {
			t.Errorf("%q should be invalid", rt)
		}
	}
}

package reconcile

// ConnectionOK is reported when a dry-run probe succeeded.
const ConnectionOK = "OK"

// Verdict summarizes a Response.
type Verdict string

const (
	VerdictChanged   Verdict = "changed"
	VerdictUnchanged Verdict = "unchanged"
	VerdictFailed    Verdict = "failed"
)

// Response is returned to the caller for every request.
type Response struct {
	Changed    bool   `json:"changed"`
	Failed     bool   `json:"failed,omitempty"`
	Stdout     string `json:"stdout,omitempty"`
	Msg        string `json:"msg,omitempty"`
	Connection string `json:"connection,omitempty"`
	DryRun     bool   `json:"dry_run,omitempty"`
	// Command is the planned command with the password masked. Only set
	// for dry-runs.
	Command string `json:"command,omitempty"`
}

// Verdict returns changed, unchanged or failed.
func (r Response) Verdict() Verdict {
	switch {
	case r.Failed:
		return VerdictFailed
	case r.Changed:
		return VerdictChanged
	default:
		return VerdictUnchanged
	}
}

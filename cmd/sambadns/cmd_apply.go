package main

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/spf13/cobra"

	"gitlab.bluewillows.net/root/sambadns/internal/config"
	"gitlab.bluewillows.net/root/sambadns/pkg/reconcile"
)

// newCmdApply converges one record or zone and prints the response.
func newCmdApply(a *app) *cobra.Command {
	var (
		file  string
		flags reconcile.Request
		state string
		fn    string
		typ   string
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Converge one DNS record or zone",
		Long: "Probe the DNS server, then run the single samba-tool dns command that " +
			"brings the record or zone to the requested state. The JSON response is " +
			"printed on stdout; the exit status is 1 when the response is failed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req reconcile.Request
			if file != "" {
				var err error
				if req, err = config.LoadRequest(file); err != nil {
					return err
				}
			}

			// Flags given on the command line override the request file.
			set := cmd.Flags().Changed
			if set("state") {
				req.State = reconcile.State(state)
			}
			if set("function") {
				req.Function = reconcile.Function(fn)
			}
			if set("type") {
				req.Type = reconcile.RecordType(typ)
			}
			overlay(set, "server", &req.Server, flags.Server)
			overlay(set, "zone", &req.Zone, flags.Zone)
			overlay(set, "name", &req.Name, flags.Name)
			overlay(set, "data", &req.Data, flags.Data)
			overlay(set, "username", &req.Username, flags.Username)
			overlay(set, "password", &req.Password, flags.Password)
			if set("dry-run") {
				req.DryRun = flags.DryRun
			}

			return a.runApply(cmd.Context(), req)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", "YAML or TOML request file")
	f.StringVar(&state, "state", string(reconcile.StatePresent), "Desired state (present|absent)")
	f.StringVar(&fn, "function", "", "What to manage (record|zone)")
	f.StringVar(&flags.Server, "server", "", "DNS server (domain controller) to manage")
	f.StringVar(&flags.Zone, "zone", "", "DNS zone")
	f.StringVar(&flags.Name, "name", "", "Record name (record only)")
	f.StringVar(&typ, "type", string(reconcile.DefaultRecordType), "Record type (A|AAAA|PTR|CNAME|MX|SRV|TXT)")
	f.StringVar(&flags.Data, "data", "", "Record data (record only)")
	f.StringVar(&flags.Username, "username", "", "Samba username (env SAMBADNS_USERNAME)")
	f.StringVar(&flags.Password, "password", "", "Samba password (env SAMBADNS_PASSWORD)")
	f.BoolVar(&flags.DryRun, "dry-run", false, "Probe and report the planned command without running it")

	return cmd
}

func overlay(set func(string) bool, name string, dst *string, value string) {
	if set(name) {
		*dst = value
	}
}

// runApply validates req, applies it and prints the response. Invalid
// input is reported before any transport is opened.
func (a *app) runApply(ctx context.Context, req reconcile.Request) error {
	req = a.withDefaults(req)
	req.Normalize()
	if err := req.Validate(); err != nil {
		return a.fail(reconcile.Response{Failed: true, Msg: err.Error()}, err)
	}

	notifier, err := a.notifier()
	if err != nil {
		return err
	}

	o, b, err := a.orchestrator(ctx)
	if err != nil {
		return a.fail(reconcile.Response{Failed: true, Msg: err.Error()}, err)
	}
	defer b.Close()

	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	resp, err := o.Apply(ctx, req)
	notifier.Notify(req, resp)
	a.writeTextfile()

	if err != nil || resp.Failed {
		return a.fail(resp, err)
	}
	return a.printJSON(resp)
}

// fail prints resp and returns an exitError with status 1.
func (a *app) fail(resp reconcile.Response, err error) error {
	if err != nil {
		a.logger.Debug("request failed", slog.String("error", err.Error()))
	}
	if perr := a.printJSON(resp); perr != nil {
		return perr
	}
	return exitError{code: 1}
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

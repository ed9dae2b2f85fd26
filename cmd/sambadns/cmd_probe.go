package main

import (
	"github.com/spf13/cobra"
)

// newCmdProbe runs only the serverinfo connectivity check.
func newCmdProbe(a *app) *cobra.Command {
	var server, username, password string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check that samba-tool can reach the DNS server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" && password == "" {
				username, password = a.cfg.Username, a.cfg.Password
			}

			o, b, err := a.orchestrator(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()

			ctx, cancel := a.commandContext(cmd.Context())
			defer cancel()

			resp, err := o.Probe(ctx, server, username, password)
			a.writeTextfile()
			if err != nil {
				return a.fail(resp, err)
			}
			return a.printJSON(resp)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "DNS server (domain controller) to probe")
	cmd.Flags().StringVar(&username, "username", "", "Samba username (env SAMBADNS_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Samba password (env SAMBADNS_PASSWORD)")
	_ = cmd.MarkFlagRequired("server")

	return cmd
}

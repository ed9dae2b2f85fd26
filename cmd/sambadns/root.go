package main

import (
	"runtime"

	"github.com/spf13/cobra"

	"gitlab.bluewillows.net/root/sambadns/internal/metrics"
)

func newRootCmd(a *app) *cobra.Command {
	var configPath, logLevel, logFormat string

	cmd := &cobra.Command{
		Use:     "sambadns",
		Short:   "Declarative DNS records and zones for Samba AD",
		Long:    "sambadns converges DNS records and zones on a Samba AD domain controller through samba-tool dns.",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML or TOML config file (env SAMBADNS_CONFIG)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error) (env SAMBADNS_LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (json|text) (env SAMBADNS_LOG_FORMAT)")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		if err := a.setup(configPath, logLevel, logFormat); err != nil {
			return err
		}
		metrics.SetBuildInfo(Version, runtime.Version())
		return nil
	}

	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	cmd.AddCommand(newCmdApply(a))
	cmd.AddCommand(newCmdProbe(a))
	cmd.AddCommand(newCmdServe(a))
	cmd.AddCommand(newCmdVersion())
	return cmd
}

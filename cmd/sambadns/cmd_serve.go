package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gitlab.bluewillows.net/root/sambadns/internal/metrics"
	"gitlab.bluewillows.net/root/sambadns/internal/server"
	"gitlab.bluewillows.net/root/sambadns/pkg/reconcile"
)

const shutdownTimeout = 10 * time.Second

// newCmdServe runs the HTTP API until SIGINT or SIGTERM.
func newCmdServe(a *app) *cobra.Command {
	var (
		listen  string
		servers []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the apply API, health checks and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen == "" {
				listen = a.cfg.ListenAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, listen, servers)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (env SAMBADNS_LISTEN_ADDR)")
	cmd.Flags().StringSliceVar(&servers, "ready-server", nil, "DNS server probed by /ready (repeatable)")

	return cmd
}

// serve blocks until ctx is done, then shuts the server down.
func (a *app) serve(ctx context.Context, listen string, readyServers []string) error {
	metrics.RegisterRuntimeCollectors()

	notifier, err := a.notifier()
	if err != nil {
		return err
	}

	o, b, err := a.orchestrator(ctx)
	if err != nil {
		return err
	}
	defer b.Close()

	srv := server.New(listen, o,
		server.WithLogger(a.logger),
		server.WithMetricsHandler(metrics.Handler()),
		server.WithDefaultCredentials(a.cfg.Username, a.cfg.Password),
		server.WithApplyTimeout(a.cfg.CommandTimeout),
		server.WithForceDryRun(a.cfg.DryRun),
		server.WithResultHook(func(_ context.Context, req reconcile.Request, resp reconcile.Response) {
			notifier.Notify(req, resp)
		}),
	)

	for _, dc := range readyServers {
		srv.RegisterChecker("samba:"+dc, func(ctx context.Context) error {
			_, err := o.Probe(ctx, dc, a.cfg.Username, a.cfg.Password)
			return err
		})
	}

	if err := srv.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	a.logger.Info("sambadns serving",
		slog.String("version", Version),
		slog.String("listen", listen),
		slog.String("transport", a.cfg.Transport.String()),
	)

	<-ctx.Done()
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

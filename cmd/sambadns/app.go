package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"gitlab.bluewillows.net/root/sambadns/internal/config"
	"gitlab.bluewillows.net/root/sambadns/internal/docker"
	"gitlab.bluewillows.net/root/sambadns/internal/metrics"
	"gitlab.bluewillows.net/root/sambadns/internal/notify"
	"gitlab.bluewillows.net/root/sambadns/pkg/reconcile"
	"gitlab.bluewillows.net/root/sambadns/pkg/runner"
	"gitlab.bluewillows.net/root/sambadns/pkg/sambatool"
	"gitlab.bluewillows.net/root/sambadns/pkg/sshutil"
)

// app carries what every subcommand needs after PersistentPreRunE.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer

	// connect opens the transport selected by the configuration.
	connect func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error)
}

// backend is an open transport to the host where samba-tool runs.
type backend struct {
	executor runner.Executor
	locator  runner.Locator
	closers  []io.Closer
}

func (b *backend) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func newApp() *app {
	return &app{
		logger:  slog.Default(),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		connect: connectBackend,
	}
}

// setup loads the configuration, applies flag overrides and installs the
// logger. Every invocation is tagged with a fresh run_id.
func (a *app) setup(configPath, logLevel, logFormat string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = strings.ToLower(logLevel)
	}
	if logFormat != "" {
		cfg.LogFormat = strings.ToLower(logFormat)
	}

	a.cfg = cfg
	a.logger = setupLogger(a.stderr, cfg.LogLevel, cfg.LogFormat).
		With(slog.String("run_id", uuid.NewString()))
	slog.SetDefault(a.logger)

	a.logger.Debug("configuration loaded", slog.String("config", cfg.String()))
	return nil
}

// setupLogger writes to w so stdout carries only command output.
func setupLogger(w io.Writer, level, format string) *slog.Logger {
	logLevel := parseLogLevel(level)

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel})
	}

	return slog.New(handler)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// orchestrator opens the backend, resolves the tool path and wires the
// metrics observers. The caller closes the returned backend.
func (a *app) orchestrator(ctx context.Context) (*reconcile.Orchestrator, *backend, error) {
	b, err := a.connect(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting %s transport: %w", a.cfg.Transport, err)
	}

	toolPath, err := b.locator.Locate(ctx, a.cfg.ToolPath)
	if err != nil {
		_ = b.Close()
		return nil, nil, fmt.Errorf("locating %s: %w", a.cfg.ToolPath, err)
	}
	a.logger.Debug("resolved samba-tool", slog.String("path", toolPath))

	r := runner.New(b.executor,
		runner.WithLogger(a.logger),
		runner.WithObserver(func(action sambatool.Action, outcome string, elapsed time.Duration) {
			metrics.ObserveCommand(action.String(), outcome, elapsed)
		}),
	)

	o := reconcile.New(r,
		reconcile.WithLogger(a.logger),
		reconcile.WithToolPath(toolPath),
		reconcile.WithProbeObserver(metrics.ObserveProbe),
		reconcile.WithReconcileObserver(func(function reconcile.Function, state reconcile.State, verdict reconcile.Verdict) {
			metrics.ObserveReconciliation(string(function), string(state), string(verdict))
		}),
	)
	return o, b, nil
}

// notifier builds the shoutrrr notifier from the configured URLs.
func (a *app) notifier() (*notify.Notifier, error) {
	return notify.New(a.cfg.NotifyURLs, notify.WithLogger(a.logger))
}

// withDefaults fills the configured credentials when the request carries
// none, and forces dry-run when configured.
func (a *app) withDefaults(req reconcile.Request) reconcile.Request {
	if req.Username == "" && req.Password == "" {
		req.Username, req.Password = a.cfg.Username, a.cfg.Password
	}
	if a.cfg.DryRun {
		req.DryRun = true
	}
	return req
}

// commandContext applies the configured command timeout.
func (a *app) commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.CommandTimeout > 0 {
		return context.WithTimeout(ctx, a.cfg.CommandTimeout)
	}
	return context.WithCancel(ctx)
}

// writeTextfile exports the metrics of a one-shot run when configured.
func (a *app) writeTextfile() {
	if a.cfg.MetricsTextfile == "" {
		return
	}
	if err := metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
		a.logger.Warn("writing metrics textfile",
			slog.String("path", a.cfg.MetricsTextfile),
			slog.String("error", err.Error()),
		)
	}
}

// connectBackend opens the configured transport.
func connectBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	switch cfg.Transport {
	case config.TransportSSH:
		client, err := sshutil.NewClient(cfg.SSH, sshutil.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		locator := sshutil.NewSFTPLocator(client, sshutil.WithLocatorLogger(logger))
		return &backend{
			executor: sshutil.NewExecutor(client, sshutil.WithExecutorLogger(logger)),
			locator:  locator,
			closers:  []io.Closer{client, locator},
		}, nil

	case config.TransportDocker:
		client, err := docker.NewClient(cfg.Docker.Container,
			docker.WithHost(cfg.Docker.Host),
			docker.WithUser(cfg.Docker.User),
			docker.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		if err := client.CheckContainer(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		return &backend{executor: client, locator: client, closers: []io.Closer{client}}, nil

	default:
		return &backend{
			executor: runner.NewLocalExecutor(runner.WithLocalLogger(logger)),
			locator:  runner.PathLocator{},
		}, nil
	}
}

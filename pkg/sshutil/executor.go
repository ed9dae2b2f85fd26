package sshutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/crypto/ssh"

	"gitlab.bluewillows.net/root/sambadns/pkg/runner"
)

// Executor runs commands on the remote host, one SSH session per command.
type Executor struct {
	client *Client
	logger *slog.Logger
}

var _ runner.Executor = (*Executor)(nil)

// ExecutorOption is a functional option for configuring the Executor.
type ExecutorOption func(*Executor)

// WithExecutorLogger sets a custom logger for command execution.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor creates an Executor on top of client.
func NewExecutor(client *Client, opts ...ExecutorOption) *Executor {
	e := &Executor{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Exec runs argv remotely. A remote non-zero exit status is returned in
// Output; connection and session failures are returned as errors.
func (e *Executor) Exec(ctx context.Context, argv []string) (runner.Output, error) {
	if len(argv) == 0 {
		return runner.Output{}, errors.New("empty command")
	}

	conn, err := e.client.Connection(ctx)
	if err != nil {
		return runner.Output{}, fmt.Errorf("connecting to %s: %w", e.client.Host(), err)
	}

	session, err := conn.NewSession()
	if err != nil {
		return runner.Output{}, fmt.Errorf("creating SSH session: %w", err)
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(ShellJoin(argv))
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = session.Close()
		return runner.Output{}, ctx.Err()
	case err := <-done:
		code, err := exitCode(err)
		if err != nil {
			return runner.Output{}, fmt.Errorf("running %s on %s: %w", argv[0], e.client.Host(), err)
		}

		e.logger.Debug("remote command completed",
			slog.String("host", e.client.Host()),
			slog.Int("exit_code", code),
			slog.Int("stdout_len", stdout.Len()),
			slog.Int("stderr_len", stderr.Len()),
		)
		return runner.Output{
			ExitCode: code,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
		}, nil
	}
}

// exitCode separates a remote exit status from a session failure.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitStatus(), nil
	}
	return 0, err
}

var safeShellToken = regexp.MustCompile(`^[A-Za-z0-9_@%+=:,./-]+$`)

// ShellQuote quotes arg for a POSIX shell. Tokens made only of safe
// characters are returned as is.
func ShellQuote(arg string) string {
	if safeShellToken.MatchString(arg) {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'"'"'`) + "'"
}

// ShellJoin quotes every token of argv and joins them with spaces.
func ShellJoin(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = ShellQuote(arg)
	}
	return strings.Join(quoted, " ")
}

package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"

	"gitlab.bluewillows.net/root/sambadns/pkg/runner"
)

var _ runner.Executor = (*Client)(nil)

// Exec runs argv in the container and waits for it to finish. The exit
// code comes from the exec instance, not from the stream.
func (c *Client) Exec(ctx context.Context, argv []string) (runner.Output, error) {
	if len(argv) == 0 {
		return runner.Output{}, errors.New("empty command")
	}

	created, err := c.api.ContainerExecCreate(ctx, c.container, container.ExecOptions{
		User:         c.user,
		Cmd:          argv,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return runner.Output{}, fmt.Errorf("creating exec in %s: %w", c.container, err)
	}

	attached, err := c.api.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return runner.Output{}, fmt.Errorf("attaching to exec %s: %w", created.ID, err)
	}
	defer attached.Close()

	var stdout, stderr bytes.Buffer
	copied := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(&stdout, &stderr, attached.Reader)
		copied <- err
	}()

	select {
	case <-ctx.Done():
		return runner.Output{}, ctx.Err()
	case err := <-copied:
		if err != nil {
			return runner.Output{}, fmt.Errorf("reading exec output: %w", err)
		}
	}

	inspect, err := c.api.ContainerExecInspect(ctx, created.ID)
	if err != nil {
		return runner.Output{}, fmt.Errorf("inspecting exec %s: %w", created.ID, err)
	}
	if inspect.Running {
		return runner.Output{}, fmt.Errorf("exec %s still running after its output closed", created.ID)
	}

	c.logger.Debug("container command completed",
		slog.String("container", c.container),
		slog.Int("exit_code", inspect.ExitCode),
		slog.Int("stdout_len", stdout.Len()),
		slog.Int("stderr_len", stderr.Len()),
	)

	return runner.Output{
		ExitCode: inspect.ExitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

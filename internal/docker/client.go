// Package docker runs samba-tool inside the Samba DC container through the
// Docker Engine API.
package docker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

// ErrContainerNotRunning is returned when the target container exists but
// is stopped.
var ErrContainerNotRunning = errors.New("container is not running")

// API is the subset of the Docker Engine client used here.
type API interface {
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
	ContainerExecCreate(ctx context.Context, containerID string, options container.ExecOptions) (container.ExecCreateResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, options container.ExecAttachOptions) (types.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (container.ExecInspect, error)
	ContainerStatPath(ctx context.Context, containerID, path string) (container.PathStat, error)
	Close() error
}

var _ API = (*client.Client)(nil)

// Client executes commands in one container.
type Client struct {
	api       API
	host      string
	container string
	user      string
	logger    *slog.Logger
}

// NewClient creates a client for the named container. Unless WithAPI is
// given, it connects to the daemon at WithHost, or DOCKER_HOST, or the
// default socket.
func NewClient(containerName string, opts ...Option) (*Client, error) {
	name := normalizeContainerName(containerName)
	if name == "" {
		return nil, errors.New("container name is required")
	}

	c := &Client{
		container: name,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.api == nil {
		clientOpts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
		if c.host != "" {
			clientOpts = append(clientOpts, client.WithHost(c.host))
		}
		api, err := client.NewClientWithOpts(clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("creating docker client: %w", err)
		}
		c.api = api
	}

	return c, nil
}

// Container returns the target container name.
func (c *Client) Container() string {
	return c.container
}

// CheckContainer verifies that the target container exists and is running.
func (c *Client) CheckContainer(ctx context.Context) error {
	info, err := c.api.ContainerInspect(ctx, c.container)
	if err != nil {
		return fmt.Errorf("inspecting container %s: %w", c.container, err)
	}
	if info.ContainerJSONBase == nil || info.State == nil || !info.State.Running {
		return fmt.Errorf("%w: %s", ErrContainerNotRunning, c.container)
	}
	return nil
}

// Close releases the daemon connection.
func (c *Client) Close() error {
	return c.api.Close()
}

// normalizeContainerName strips the leading slash the Engine API puts on
// container names.
func normalizeContainerName(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "/")
}

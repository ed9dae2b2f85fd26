package docker

import "log/slog"

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHost sets the Docker host address, for example
// "unix:///var/run/docker.sock" or "tcp://docker.example.com:2376".
//
// If not set, the client uses the DOCKER_HOST environment variable
// or falls back to the default socket.
func WithHost(host string) Option {
	return func(c *Client) {
		c.host = host
	}
}

// WithUser runs commands as user inside the container. Empty means the
// container's default user.
func WithUser(user string) Option {
	return func(c *Client) {
		c.user = user
	}
}

// WithAPI uses api instead of dialing the daemon.
func WithAPI(api API) Option {
	return func(c *Client) {
		c.api = api
	}
}

// WithLogger sets a custom slog.Logger for the client.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

package sshutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Sentinel errors for SSH operations.
var (
	// ErrNotConnected is returned when an operation needs a connection that
	// has not been established.
	ErrNotConnected = errors.New("ssh client is not connected")

	// ErrAuthenticationFailed is returned when SSH authentication fails.
	ErrAuthenticationFailed = errors.New("ssh authentication failed")

	// ErrConnectionTimeout is returned when dialing times out.
	ErrConnectionTimeout = errors.New("ssh connection timed out")
)

// Client holds one SSH connection to the domain controller host. The
// connection is dialed on first use and shared by every session.
type Client struct {
	config *Config
	logger *slog.Logger

	mu     sync.Mutex
	conn   *ssh.Client
	cancel context.CancelFunc
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithLogger sets a custom logger for the SSH client.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for config. Nothing is dialed until the
// first call to Connection.
func NewClient(config *Config, opts ...ClientOption) (*Client, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Client{
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Host returns the configured server host.
func (c *Client) Host() string {
	return c.config.Host
}

// Connection returns the shared connection, dialing it if needed.
func (c *Client) Connection(ctx context.Context) (*ssh.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}
	if err := c.dial(ctx); err != nil {
		return nil, err
	}
	return c.conn, nil
}

// IsConnected reports whether a connection is currently open.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close closes the connection. Safe to call multiple times.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	c.logger.Debug("SSH connection closed", slog.String("host", c.config.Host))
	return err
}

// dial must be called with c.mu held.
func (c *Client) dial(ctx context.Context) error {
	sshConfig, err := c.buildSSHConfig()
	if err != nil {
		return fmt.Errorf("building SSH config: %w", err)
	}

	c.logger.Debug("connecting to SSH server",
		slog.String("host", c.config.Host),
		slog.Int("port", c.config.Port),
		slog.String("user", c.config.User),
	)

	timeout := c.config.GetTimeout()
	dialCtx, dialCancel := context.WithTimeout(ctx, timeout)
	defer dialCancel()

	dialer := &net.Dialer{Timeout: timeout}
	netConn, err := dialer.DialContext(dialCtx, "tcp", c.config.Address())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrConnectionTimeout
		}
		return fmt.Errorf("dialing %s: %w", c.config.Address(), err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, c.config.Address(), sshConfig)
	if err != nil {
		_ = netConn.Close()
		if isAuthError(err) {
			return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
		}
		return fmt.Errorf("SSH handshake failed: %w", err)
	}

	c.conn = ssh.NewClient(sshConn, chans, reqs)

	keepaliveCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.keepalive(keepaliveCtx, c.conn, c.config.GetKeepaliveInterval())

	c.logger.Info("SSH connection established",
		slog.String("host", c.config.Host),
		slog.Int("port", c.config.Port),
	)
	return nil
}

func (c *Client) buildSSHConfig() (*ssh.ClientConfig, error) {
	authMethods, err := c.buildAuthMethods()
	if err != nil {
		return nil, fmt.Errorf("building auth methods: %w", err)
	}

	hostKeyCallback, err := c.buildHostKeyCallback()
	if err != nil {
		return nil, fmt.Errorf("building host key callback: %w", err)
	}

	return &ssh.ClientConfig{
		User:            c.config.User,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         c.config.GetTimeout(),
	}, nil
}

// buildAuthMethods orders key authentication before password.
func (c *Client) buildAuthMethods() ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if c.config.KeyFile != "" {
		keyData, err := os.ReadFile(c.config.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("reading key file %s: %w", c.config.KeyFile, err)
		}
		signer, err := c.parsePrivateKey(keyData)
		if err != nil {
			return nil, fmt.Errorf("parsing key from file: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if c.config.KeyData != "" {
		signer, err := c.parsePrivateKey([]byte(c.config.KeyData))
		if err != nil {
			return nil, fmt.Errorf("parsing key data: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if c.config.Password != "" {
		methods = append(methods, ssh.Password(c.config.Password))
	}

	if len(methods) == 0 {
		return nil, errors.New("no authentication methods configured")
	}
	return methods, nil
}

func (c *Client) parsePrivateKey(keyData []byte) (ssh.Signer, error) {
	if c.config.KeyPassphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(keyData, []byte(c.config.KeyPassphrase))
	}
	return ssh.ParsePrivateKey(keyData)
}

func (c *Client) buildHostKeyCallback() (ssh.HostKeyCallback, error) {
	if c.config.KnownHostsFile != "" {
		callback, err := knownhosts.New(c.config.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("loading known_hosts %s: %w", c.config.KnownHostsFile, err)
		}
		return callback, nil
	}

	c.logger.Warn("host key verification disabled, set a known_hosts file to enable it",
		slog.String("host", c.config.Host),
	)
	return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // no known_hosts configured
}

// keepalive stops when ctx is canceled or the connection goes away.
func (c *Client) keepalive(ctx context.Context, conn *ssh.Client, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := conn.SendRequest("keepalive@openssh.com", true, nil); err != nil {
				c.logger.Warn("keepalive failed",
					slog.String("host", c.config.Host),
					slog.String("error", err.Error()),
				)
				c.drop(conn)
				return
			}
		}
	}
}

// drop forgets conn so the next Connection call dials again.
func (c *Client) drop(conn *ssh.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == conn {
		_ = c.conn.Close()
		c.conn = nil
	}
}

func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "unable to authenticate") ||
		strings.Contains(errStr, "no supported methods") ||
		strings.Contains(errStr, "permission denied")
}

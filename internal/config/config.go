// Package config loads sambadns configuration from an optional YAML or
// TOML file and SAMBADNS_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"gitlab.bluewillows.net/root/sambadns/pkg/sshutil"
)

// Transport selects where samba-tool runs.
type Transport string

const (
	// TransportLocal runs samba-tool as a child process.
	TransportLocal Transport = "local"
	// TransportSSH runs samba-tool on the domain controller over SSH.
	TransportSSH Transport = "ssh"
	// TransportDocker runs samba-tool inside the Samba container.
	TransportDocker Transport = "docker"
)

// String returns the transport name.
func (t Transport) String() string {
	return string(t)
}

// Configuration defaults.
const (
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	DefaultToolPath   = "samba-tool"
	DefaultTransport  = TransportLocal
	DefaultListenAddr = ":8080"
)

// EnvPrefix is the prefix of every environment variable read here.
const EnvPrefix = "SAMBADNS_"

// Config holds the runtime configuration.
type Config struct {
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text

	// ToolPath is the samba-tool executable, a bare name or a path on the
	// host where commands run.
	ToolPath  string
	Transport Transport

	// Username and Password are the Samba credentials used when a request
	// carries none.
	Username string
	Password string

	// DryRun forces dry-run on every request.
	DryRun bool

	// CommandTimeout bounds one invocation (probe plus action). Zero means
	// no timeout.
	CommandTimeout time.Duration

	// MetricsTextfile, when set, receives the metrics of a one-shot run in
	// node_exporter textfile format.
	MetricsTextfile string

	// NotifyURLs are shoutrrr service URLs notified of changes and failures.
	NotifyURLs []string

	// ListenAddr is the HTTP listen address for serve.
	ListenAddr string

	Docker DockerConfig

	// SSH is set when Transport is ssh.
	SSH *sshutil.Config
}

// DockerConfig selects the container samba-tool runs in.
type DockerConfig struct {
	Host      string // Docker host, empty for DOCKER_HOST or the default socket
	Container string // Samba DC container name or ID
	User      string // user inside the container, empty for the image default
}

// defaults returns a Config with every default applied.
func defaults() *Config {
	return &Config{
		LogLevel:   DefaultLogLevel,
		LogFormat:  DefaultLogFormat,
		ToolPath:   DefaultToolPath,
		Transport:  DefaultTransport,
		ListenAddr: DefaultListenAddr,
	}
}

// String summarizes the configuration for logs. Secrets are not included.
func (c *Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "transport=%s tool=%s log_level=%s log_format=%s", c.Transport, c.ToolPath, c.LogLevel, c.LogFormat)
	if c.Username != "" {
		fmt.Fprintf(&b, " username=%s", c.Username)
	}
	if c.DryRun {
		b.WriteString(" dry_run=true")
	}
	if c.CommandTimeout > 0 {
		fmt.Fprintf(&b, " timeout=%s", c.CommandTimeout)
	}
	switch c.Transport {
	case TransportDocker:
		fmt.Fprintf(&b, " container=%s", c.Docker.Container)
	case TransportSSH:
		if c.SSH != nil {
			fmt.Fprintf(&b, " ssh=%s@%s", c.SSH.User, c.SSH.Address())
		}
	}
	if len(c.NotifyURLs) > 0 {
		fmt.Fprintf(&b, " notify_targets=%d", len(c.NotifyURLs))
	}
	return b.String()
}

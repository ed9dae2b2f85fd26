package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"gitlab.bluewillows.net/root/sambadns/pkg/sshutil"
)

// FileConfig is the configuration file structure, in YAML or TOML.
type FileConfig struct {
	Logging *FileLoggingConfig `yaml:"logging,omitempty" toml:"logging,omitempty"`
	Samba   *FileSambaConfig   `yaml:"samba,omitempty" toml:"samba,omitempty"`
	Docker  *FileDockerConfig  `yaml:"docker,omitempty" toml:"docker,omitempty"`
	SSH     *FileSSHConfig     `yaml:"ssh,omitempty" toml:"ssh,omitempty"`
	Metrics *FileMetricsConfig `yaml:"metrics,omitempty" toml:"metrics,omitempty"`
	Notify  *FileNotifyConfig  `yaml:"notify,omitempty" toml:"notify,omitempty"`
	Server  *FileServerConfig  `yaml:"server,omitempty" toml:"server,omitempty"`
}

// FileLoggingConfig holds logging settings.
type FileLoggingConfig struct {
	Level  string `yaml:"level,omitempty" toml:"level,omitempty"`   // debug, info, warn, error
	Format string `yaml:"format,omitempty" toml:"format,omitempty"` // json, text
}

// FileSambaConfig holds samba-tool settings.
type FileSambaConfig struct {
	ToolPath  string `yaml:"tool_path,omitempty" toml:"tool_path,omitempty"`
	Transport string `yaml:"transport,omitempty" toml:"transport,omitempty"` // local, ssh, docker
	Username  string `yaml:"username,omitempty" toml:"username,omitempty"`
	Password  string `yaml:"password,omitempty" toml:"password,omitempty"`
	Timeout   string `yaml:"timeout,omitempty" toml:"timeout,omitempty"` // Go duration format
	DryRun    *bool  `yaml:"dry_run,omitempty" toml:"dry_run,omitempty"`
}

// FileDockerConfig holds Docker transport settings.
type FileDockerConfig struct {
	Host      string `yaml:"host,omitempty" toml:"host,omitempty"`
	Container string `yaml:"container,omitempty" toml:"container,omitempty"`
	User      string `yaml:"user,omitempty" toml:"user,omitempty"`
}

// FileSSHConfig holds SSH transport settings.
type FileSSHConfig struct {
	Host          string `yaml:"host,omitempty" toml:"host,omitempty"`
	Port          int    `yaml:"port,omitempty" toml:"port,omitempty"`
	User          string `yaml:"user,omitempty" toml:"user,omitempty"`
	KeyFile       string `yaml:"key_file,omitempty" toml:"key_file,omitempty"`
	KeyPassphrase string `yaml:"key_passphrase,omitempty" toml:"key_passphrase,omitempty"`
	Password      string `yaml:"password,omitempty" toml:"password,omitempty"`
	KnownHosts    string `yaml:"known_hosts,omitempty" toml:"known_hosts,omitempty"`
	Timeout       string `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
}

// FileMetricsConfig holds metrics settings.
type FileMetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty" toml:"textfile,omitempty"`
}

// FileNotifyConfig holds notification settings.
type FileNotifyConfig struct {
	URLs []string `yaml:"urls,omitempty" toml:"urls,omitempty"`
}

// FileServerConfig holds HTTP server settings.
type FileServerConfig struct {
	Listen string `yaml:"listen,omitempty" toml:"listen,omitempty"`
}

// envVarPattern matches ${VAR} or ${VAR:-default} syntax.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// InterpolateEnvVars replaces ${VAR} patterns with environment variable values.
// Supports ${VAR:-default} syntax for default values.
func InterpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		if value := os.Getenv(groups[1]); value != "" {
			return value
		}
		if len(groups) >= 3 {
			return groups[2]
		}
		return ""
	})
}

func interpolateAll(fields ...*string) {
	for _, f := range fields {
		*f = InterpolateEnvVars(*f)
	}
}

func (c *FileConfig) interpolateEnvVars() {
	if c.Logging != nil {
		interpolateAll(&c.Logging.Level, &c.Logging.Format)
	}
	if c.Samba != nil {
		s := c.Samba
		interpolateAll(&s.ToolPath, &s.Transport, &s.Username, &s.Password, &s.Timeout)
	}
	if c.Docker != nil {
		interpolateAll(&c.Docker.Host, &c.Docker.Container, &c.Docker.User)
	}
	if c.SSH != nil {
		s := c.SSH
		interpolateAll(&s.Host, &s.User, &s.KeyFile, &s.KeyPassphrase, &s.Password, &s.KnownHosts, &s.Timeout)
	}
	if c.Metrics != nil {
		interpolateAll(&c.Metrics.Textfile)
	}
	if c.Notify != nil {
		for i := range c.Notify.URLs {
			c.Notify.URLs[i] = InterpolateEnvVars(c.Notify.URLs[i])
		}
	}
	if c.Server != nil {
		interpolateAll(&c.Server.Listen)
	}
}

// decodeFile decodes data into v according to the extension of path:
// .toml for TOML, .yml, .yaml or no extension for YAML.
func decodeFile(path string, data []byte, v any) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parsing TOML: %w", err)
		}
	case ".yml", ".yaml", "":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parsing YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported file extension %q (use .yaml, .yml or .toml)", ext)
	}
	return nil
}

// LoadFile reads and parses a YAML or TOML configuration file.
// Environment variables in ${VAR} format are interpolated.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg FileConfig
	if err := decodeFile(path, data, &cfg); err != nil {
		return nil, err
	}

	cfg.interpolateEnvVars()
	return &cfg, nil
}

// apply copies the values set in the file onto cfg.
func (c *FileConfig) apply(cfg *Config) []string {
	var errs []string

	if c.Logging != nil {
		if c.Logging.Level != "" {
			cfg.LogLevel = strings.ToLower(c.Logging.Level)
		}
		if c.Logging.Format != "" {
			cfg.LogFormat = strings.ToLower(c.Logging.Format)
		}
	}

	if s := c.Samba; s != nil {
		if s.ToolPath != "" {
			cfg.ToolPath = s.ToolPath
		}
		if s.Transport != "" {
			cfg.Transport = Transport(strings.ToLower(s.Transport))
		}
		if s.Username != "" {
			cfg.Username = s.Username
		}
		if s.Password != "" {
			cfg.Password = s.Password
		}
		if s.DryRun != nil {
			cfg.DryRun = *s.DryRun
		}
		if s.Timeout != "" {
			timeout, err := time.ParseDuration(s.Timeout)
			if err != nil {
				errs = append(errs, fmt.Sprintf("samba.timeout: invalid duration %q (use format like 30s, 2m)", s.Timeout))
			} else {
				cfg.CommandTimeout = timeout
			}
		}
	}

	if d := c.Docker; d != nil {
		cfg.Docker = DockerConfig{Host: d.Host, Container: d.Container, User: d.User}
	}

	if s := c.SSH; s != nil {
		ssh := &sshutil.Config{
			Host:           s.Host,
			Port:           s.Port,
			User:           s.User,
			KeyFile:        s.KeyFile,
			KeyPassphrase:  s.KeyPassphrase,
			Password:       s.Password,
			KnownHostsFile: s.KnownHosts,
		}
		if ssh.Port == 0 {
			ssh.Port = sshutil.DefaultSSHPort
		}
		if s.Timeout != "" {
			timeout, err := time.ParseDuration(s.Timeout)
			if err != nil {
				errs = append(errs, fmt.Sprintf("ssh.timeout: invalid duration %q", s.Timeout))
			} else {
				ssh.Timeout = timeout
			}
		}
		cfg.SSH = ssh
	}

	if c.Metrics != nil && c.Metrics.Textfile != "" {
		cfg.MetricsTextfile = c.Metrics.Textfile
	}
	if c.Notify != nil && len(c.Notify.URLs) > 0 {
		cfg.NotifyURLs = append([]string(nil), c.Notify.URLs...)
	}
	if c.Server != nil && c.Server.Listen != "" {
		cfg.ListenAddr = c.Server.Listen
	}

	return errs
}

// GetConfigFilePath returns the config file path from SAMBADNS_CONFIG.
// Returns empty string if no config file is specified.
func GetConfigFilePath() string {
	return getEnv(EnvPrefix + "CONFIG")
}

package sshutil

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default SSH client configuration values.
const (
	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultSSHTimeout is the default connection timeout.
	DefaultSSHTimeout = 30 * time.Second

	// DefaultKeepaliveInterval is the default SSH keepalive interval.
	DefaultKeepaliveInterval = 15 * time.Second
)

// Config holds SSH connection configuration for the domain controller host.
type Config struct {
	// Host is the SSH server hostname or IP address (required).
	Host string

	// Port is the SSH server port (default: 22).
	Port int

	// User is the SSH login (required). This is the operating system
	// account, not the Samba account passed to samba-tool.
	User string

	// KeyFile is the path to the SSH private key file.
	KeyFile string

	// KeyData is the SSH private key content, usually from a Docker secret.
	KeyData string

	// KeyPassphrase decrypts KeyFile or KeyData (optional).
	KeyPassphrase string

	// Password enables password authentication.
	Password string

	// Timeout is the dial and handshake timeout (default: 30s).
	Timeout time.Duration

	// KeepaliveInterval is the interval for keepalive requests (default: 15s).
	KeepaliveInterval time.Duration

	// KnownHostsFile is an OpenSSH known_hosts file used to verify the
	// server. Empty disables verification.
	KnownHostsFile string
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Host == "" {
		errs = append(errs, "host is required")
	}
	if c.User == "" {
		errs = append(errs, "user is required")
	}
	if c.KeyFile == "" && c.KeyData == "" && c.Password == "" {
		errs = append(errs, "at least one authentication method required (key_file, key_data, or password)")
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, "port must be between 0 and 65535")
	}
	if c.Timeout < 0 {
		errs = append(errs, "timeout must be non-negative")
	}
	if c.KeepaliveInterval < 0 {
		errs = append(errs, "keepalive_interval must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("ssh config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Address returns the SSH server address in host:port format.
func (c *Config) Address() string {
	port := c.Port
	if port == 0 {
		port = DefaultSSHPort
	}
	return fmt.Sprintf("%s:%d", c.Host, port)
}

// GetTimeout returns the configured timeout or the default.
func (c *Config) GetTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultSSHTimeout
}

// GetKeepaliveInterval returns the configured keepalive interval or the default.
func (c *Config) GetKeepaliveInterval() time.Duration {
	if c.KeepaliveInterval > 0 {
		return c.KeepaliveInterval
	}
	return DefaultKeepaliveInterval
}

// LoadConfig loads SSH configuration from environment variables named
// {prefix}{setting}:
//
//   - HOST, PORT (default 22), USER
//   - KEY_FILE, KEY_DATA, KEY_PASSPHRASE, PASSWORD (each also read from
//     the file named by the matching _FILE variable)
//   - TIMEOUT, KEEPALIVE_INTERVAL: seconds or a Go duration
//   - KNOWN_HOSTS: path to a known_hosts file
func LoadConfig(prefix string) (*Config, error) {
	config := &Config{
		Host:           os.Getenv(prefix + "HOST"),
		User:           os.Getenv(prefix + "USER"),
		KeyFile:        getEnvOrFile(prefix+"KEY_FILE", prefix+"KEY_FILE_FILE"),
		KeyData:        getEnvOrFile(prefix+"KEY_DATA", prefix+"KEY_DATA_FILE"),
		KeyPassphrase:  getEnvOrFile(prefix+"KEY_PASSPHRASE", prefix+"KEY_PASSPHRASE_FILE"),
		Password:       getEnvOrFile(prefix+"PASSWORD", prefix+"PASSWORD_FILE"),
		KnownHostsFile: os.Getenv(prefix + "KNOWN_HOSTS"),
		Port:           DefaultSSHPort,
	}

	if portStr := os.Getenv(prefix + "PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT value %q: %w", portStr, err)
		}
		config.Port = port
	}

	var err error
	if config.Timeout, err = parseSeconds(os.Getenv(prefix + "TIMEOUT")); err != nil {
		return nil, fmt.Errorf("invalid TIMEOUT value: %w", err)
	}
	if config.KeepaliveInterval, err = parseSeconds(os.Getenv(prefix + "KEEPALIVE_INTERVAL")); err != nil {
		return nil, fmt.Errorf("invalid KEEPALIVE_INTERVAL value: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// parseSeconds accepts a bare number of seconds or a duration string.
func parseSeconds(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// getEnvOrFile returns the contents of the file named by fileKey when it
// is set and readable, otherwise the value of directKey.
func getEnvOrFile(directKey, fileKey string) string {
	if filePath := os.Getenv(fileKey); filePath != "" {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return os.Getenv(directKey)
}

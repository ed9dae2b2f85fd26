package config

import (
	"fmt"
	"strings"
)

// ValidationError collects every configuration problem found by Load.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration error: %s", e.Errors[0])
	}
	return fmt.Sprintf("configuration errors:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks the complete configuration. All problems are reported
// together in a *ValidationError.
func (c *Config) Validate() error {
	if errs := validateConfig(c); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func validateConfig(cfg *Config) []string {
	var errs []string

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log level: invalid value %q (must be debug, info, warn, or error)", cfg.LogLevel))
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log format: invalid value %q (must be json or text)", cfg.LogFormat))
	}

	if strings.TrimSpace(cfg.ToolPath) == "" {
		errs = append(errs, "tool path: must not be empty")
	}

	if cfg.CommandTimeout < 0 {
		errs = append(errs, "command timeout: must be non-negative")
	}

	switch cfg.Transport {
	case TransportLocal:
	case TransportDocker:
		if cfg.Docker.Container == "" {
			errs = append(errs, "docker transport: container is required")
		}
	case TransportSSH:
		if cfg.SSH == nil {
			errs = append(errs, "ssh transport: ssh settings are required")
		} else if err := cfg.SSH.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	default:
		errs = append(errs, fmt.Sprintf("transport: invalid value %q (must be local, ssh, or docker)", cfg.Transport))
	}

	return errs
}

package config

import (
	"fmt"
	"strings"
	"time"

	"gitlab.bluewillows.net/root/sambadns/pkg/sshutil"
)

// applyEnv overrides cfg with every SAMBADNS_* variable that is set.
// Environment variables always take precedence over the config file.
func applyEnv(cfg *Config) []string {
	var errs []string

	if v := getEnv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getEnv(EnvPrefix + "LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := getEnv(EnvPrefix + "TOOL_PATH"); v != "" {
		cfg.ToolPath = v
	}
	if v := getEnv(EnvPrefix + "TRANSPORT"); v != "" {
		cfg.Transport = Transport(strings.ToLower(v))
	}
	if v := getEnvWithFileFallback("USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := getEnvWithFileFallback("PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := getEnv(EnvPrefix + "DRY_RUN"); v != "" {
		cfg.DryRun = parseBool(v, cfg.DryRun)
	}

	if v := getEnv(EnvPrefix + "COMMAND_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%sCOMMAND_TIMEOUT: invalid duration %q (use format like 30s, 2m)", EnvPrefix, v))
		} else {
			cfg.CommandTimeout = timeout
		}
	}

	if v := getEnv(EnvPrefix + "METRICS_TEXTFILE"); v != "" {
		cfg.MetricsTextfile = v
	}
	if v := getEnvWithFileFallback("NOTIFY_URLS"); v != "" {
		cfg.NotifyURLs = splitList(v)
	}
	if v := getEnv(EnvPrefix + "LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}

	if v := getEnv(EnvPrefix + "DOCKER_HOST"); v != "" {
		cfg.Docker.Host = v
	}
	if v := getEnv(EnvPrefix + "DOCKER_CONTAINER"); v != "" {
		cfg.Docker.Container = v
	}
	if v := getEnv(EnvPrefix + "DOCKER_USER"); v != "" {
		cfg.Docker.User = v
	}

	if cfg.Transport == TransportSSH && getEnv(EnvPrefix+"SSH_HOST") != "" {
		ssh, err := sshutil.LoadConfig(EnvPrefix + "SSH_")
		if err != nil {
			errs = append(errs, fmt.Sprintf("%sSSH_*: %v", EnvPrefix, err))
		} else {
			cfg.SSH = ssh
		}
	}

	return errs
}

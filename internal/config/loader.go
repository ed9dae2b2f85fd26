package config

import (
	"log/slog"
)

// Load builds the configuration from defaults, then the config file at
// path (or SAMBADNS_CONFIG when path is empty), then the environment.
// Every problem found along the way is returned in one *ValidationError.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetConfigFilePath()
	}

	cfg := defaults()
	var errs []string

	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, &ValidationError{Errors: []string{"config file: " + err.Error()}}
		}
		slog.Debug("loaded configuration from file", slog.String("path", path))
		errs = append(errs, fileCfg.apply(cfg)...)
	}

	errs = append(errs, applyEnv(cfg)...)
	errs = append(errs, validateConfig(cfg)...)

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return cfg, nil
}

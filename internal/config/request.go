package config

import (
	"fmt"
	"os"

	"gitlab.bluewillows.net/root/sambadns/pkg/reconcile"
)

// LoadRequest reads one reconciliation request from a YAML or TOML file.
// ${VAR} references are interpolated so credentials can stay in the
// environment.
func LoadRequest(path string) (reconcile.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return reconcile.Request{}, fmt.Errorf("reading request file: %w", err)
	}

	var req reconcile.Request
	if err := decodeFile(path, data, &req); err != nil {
		return reconcile.Request{}, fmt.Errorf("request file %s: %w", path, err)
	}

	fields := []*string{&req.Server, &req.Zone, &req.Name, &req.Data, &req.Username, &req.Password}
	interpolateAll(fields...)
	return req, nil
}

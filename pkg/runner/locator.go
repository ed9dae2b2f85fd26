package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ErrToolNotFound is returned when the samba-tool binary cannot be found.
var ErrToolNotFound = errors.New("samba-tool executable not found")

// Locator resolves the executable path of the tool on the host where
// commands will run.
type Locator interface {
	Locate(ctx context.Context, name string) (string, error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func(ctx context.Context, name string) (string, error)

// Locate calls f.
func (f LocatorFunc) Locate(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}

// PathLocator finds executables on the local PATH.
type PathLocator struct{}

// Locate returns the absolute path of name. Names containing a slash are
// checked as given.
func (PathLocator) Locate(_ context.Context, name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrToolNotFound, name, err)
	}
	return path, nil
}

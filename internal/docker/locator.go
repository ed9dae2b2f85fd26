package docker

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	cerrdefs "github.com/containerd/errdefs"

	"gitlab.bluewillows.net/root/sambadns/pkg/runner"
)

// SearchPath lists the directories searched in the container for a bare
// tool name.
var SearchPath = []string{
	"/usr/local/samba/bin",
	"/usr/local/bin",
	"/usr/bin",
	"/usr/sbin",
	"/bin",
}

var _ runner.Locator = (*Client)(nil)

// Locate finds name inside the container. Symlinks are accepted since
// distribution packages often install the tool as one.
func (c *Client) Locate(ctx context.Context, name string) (string, error) {
	candidates := []string{name}
	if !strings.Contains(name, "/") {
		candidates = candidates[:0]
		for _, dir := range SearchPath {
			candidates = append(candidates, path.Join(dir, name))
		}
	}

	for _, candidate := range candidates {
		stat, err := c.api.ContainerStatPath(ctx, c.container, candidate)
		if err != nil {
			if cerrdefs.IsNotFound(err) {
				continue
			}
			return "", fmt.Errorf("stat %s in %s: %w", candidate, c.container, err)
		}
		if stat.Mode&os.ModeSymlink != 0 || (stat.Mode.IsRegular() && stat.Mode.Perm()&0o111 != 0) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s in container %s", runner.ErrToolNotFound, name, c.container)
}

package sshutil

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/pkg/sftp"

	"gitlab.bluewillows.net/root/sambadns/pkg/runner"
)

// DefaultSearchPath lists the directories searched for a bare tool name.
// Samba source installs use /usr/local/samba.
var DefaultSearchPath = []string{
	"/usr/local/samba/bin",
	"/usr/local/bin",
	"/usr/bin",
	"/usr/sbin",
	"/bin",
}

// statFS is the part of *sftp.Client the locator needs.
type statFS interface {
	Stat(p string) (os.FileInfo, error)
}

// SFTPLocator finds the tool on the remote host by stat'ing candidate
// paths over SFTP.
type SFTPLocator struct {
	client *Client
	dirs   []string
	logger *slog.Logger

	mu   sync.Mutex
	sftp *sftp.Client
	fs   statFS
}

var _ runner.Locator = (*SFTPLocator)(nil)

// LocatorOption is a functional option for configuring the SFTPLocator.
type LocatorOption func(*SFTPLocator)

// WithSearchPath replaces DefaultSearchPath.
func WithSearchPath(dirs ...string) LocatorOption {
	return func(l *SFTPLocator) {
		if len(dirs) > 0 {
			l.dirs = dirs
		}
	}
}

// WithLocatorLogger sets a custom logger.
func WithLocatorLogger(logger *slog.Logger) LocatorOption {
	return func(l *SFTPLocator) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewSFTPLocator creates a locator over client.
func NewSFTPLocator(client *Client, opts ...LocatorOption) *SFTPLocator {
	l := &SFTPLocator{
		client: client,
		dirs:   DefaultSearchPath,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate returns the first executable regular file named name. A name
// containing a slash is checked as given.
func (l *SFTPLocator) Locate(ctx context.Context, name string) (string, error) {
	fs, err := l.filesystem(ctx)
	if err != nil {
		return "", err
	}

	candidates := []string{name}
	if !strings.Contains(name, "/") {
		candidates = candidates[:0]
		for _, dir := range l.dirs {
			candidates = append(candidates, path.Join(dir, name))
		}
	}

	for _, candidate := range candidates {
		info, err := fs.Stat(candidate)
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		if !isExecutable(info) {
			l.logger.Debug("skipping non-executable candidate", slog.String("path", candidate))
			continue
		}
		return candidate, nil
	}

	return "", fmt.Errorf("%w: %s on %s", runner.ErrToolNotFound, name, l.host())
}

// Close closes the SFTP session. The SSH connection stays open.
func (l *SFTPLocator) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sftp == nil {
		return nil
	}
	err := l.sftp.Close()
	l.sftp = nil
	l.fs = nil
	return err
}

func (l *SFTPLocator) filesystem(ctx context.Context) (statFS, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fs != nil {
		return l.fs, nil
	}
	if l.client == nil {
		return nil, ErrNotConnected
	}

	conn, err := l.client.Connection(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", l.client.Host(), err)
	}
	client, err := sftp.NewClient(conn)
	if err != nil {
		return nil, fmt.Errorf("creating SFTP client: %w", err)
	}

	l.sftp = client
	l.fs = client
	return l.fs, nil
}

func (l *SFTPLocator) host() string {
	if l.client == nil {
		return "remote host"
	}
	return l.client.Host()
}

func isExecutable(info os.FileInfo) bool {
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

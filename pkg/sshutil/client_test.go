package sshutil

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		config := &Config{Host: "dc1.example.com", User: "admin", KeyFile: "/path/to/key"}

		client, err := NewClient(config)
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		if client.config != config {
			t.Error("NewClient() config not set correctly")
		}
		if client.Host() != "dc1.example.com" {
			t.Errorf("Host() = %q", client.Host())
		}
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := NewClient(nil)
		if err == nil || !strings.Contains(err.Error(), "config is required") {
			t.Errorf("NewClient() error = %v, want error containing 'config is required'", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		if _, err := NewClient(&Config{Host: "dc1.example.com"}); err == nil {
			t.Fatal("NewClient() expected error for invalid config")
		}
	})

	t.Run("with logger option", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
		client, err := NewClient(&Config{Host: "dc1", User: "admin", Password: "secret"}, WithLogger(logger))
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		if client.logger != logger {
			t.Error("WithLogger() option not applied")
		}
	})

	t.Run("nil logger keeps default", func(t *testing.T) {
		client, err := NewClient(&Config{Host: "dc1", User: "admin", Password: "secret"}, WithLogger(nil))
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		if client.logger == nil {
			t.Error("WithLogger(nil) removed default logger")
		}
	})
}

func TestClient_NotConnected(t *testing.T) {
	client, err := NewClient(&Config{Host: "dc1", User: "admin", Password: "secret"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if client.IsConnected() {
		t.Error("IsConnected() = true before first use")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
}

func TestClient_Connection(t *testing.T) {
	server := startTestServer(t, func(string) reply { return reply{} })

	client, err := NewClient(server.config)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	first, err := client.Connection(context.Background())
	if err != nil {
		t.Fatalf("Connection() error = %v", err)
	}
	second, err := client.Connection(context.Background())
	if err != nil {
		t.Fatalf("Connection() error = %v", err)
	}
	if first != second {
		t.Error("Connection() dialed twice")
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}
}

func TestClient_Connection_Refused(t *testing.T) {
	client, err := NewClient(&Config{
		Host:     "127.0.0.1",
		Port:     1,
		User:     "admin",
		Password: "secret",
		Timeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.Connection(context.Background()); err == nil {
		_ = client.Close()
		t.Fatal("Connection() expected error for closed port")
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after failed dial")
	}
}

func TestClient_buildAuthMethods(t *testing.T) {
	t.Run("invalid key file", func(t *testing.T) {
		keyFile := filepath.Join(t.TempDir(), "id_ed25519")
		if err := os.WriteFile(keyFile, []byte("fake-key-content"), 0o600); err != nil {
			t.Fatalf("writing key: %v", err)
		}

		client, _ := NewClient(&Config{Host: "dc1", User: "admin", KeyFile: keyFile})
		_, err := client.buildAuthMethods()
		if err == nil || !strings.Contains(err.Error(), "parsing key") {
			t.Errorf("buildAuthMethods() error = %v, want error containing 'parsing key'", err)
		}
	})

	t.Run("nonexistent key file", func(t *testing.T) {
		client, _ := NewClient(&Config{Host: "dc1", User: "admin", KeyFile: "/nonexistent/key"})
		_, err := client.buildAuthMethods()
		if err == nil || !strings.Contains(err.Error(), "reading key file") {
			t.Errorf("buildAuthMethods() error = %v, want error containing 'reading key file'", err)
		}
	})

	t.Run("invalid key data", func(t *testing.T) {
		client, _ := NewClient(&Config{Host: "dc1", User: "admin", KeyData: "not-a-valid-key"})
		_, err := client.buildAuthMethods()
		if err == nil || !strings.Contains(err.Error(), "parsing key data") {
			t.Errorf("buildAuthMethods() error = %v, want error containing 'parsing key data'", err)
		}
	})

	t.Run("password only", func(t *testing.T) {
		client, _ := NewClient(&Config{Host: "dc1", User: "admin", Password: "secret"})
		methods, err := client.buildAuthMethods()
		if err != nil {
			t.Fatalf("buildAuthMethods() error = %v", err)
		}
		if len(methods) != 1 {
			t.Errorf("buildAuthMethods() returned %d methods, want 1", len(methods))
		}
	})

	t.Run("no auth methods", func(t *testing.T) {
		client := &Client{config: &Config{Host: "dc1", User: "admin"}, logger: slog.Default()}
		_, err := client.buildAuthMethods()
		if err == nil || !strings.Contains(err.Error(), "no authentication methods") {
			t.Errorf("buildAuthMethods() error = %v, want error containing 'no authentication methods'", err)
		}
	})
}

func TestClient_buildHostKeyCallback(t *testing.T) {
	t.Run("no known_hosts", func(t *testing.T) {
		client, _ := NewClient(&Config{Host: "dc1", User: "admin", Password: "secret"})
		callback, err := client.buildHostKeyCallback()
		if err != nil {
			t.Fatalf("buildHostKeyCallback() error = %v", err)
		}
		if callback == nil {
			t.Error("buildHostKeyCallback() returned nil callback")
		}
	})

	t.Run("known_hosts file", func(t *testing.T) {
		knownHosts := filepath.Join(t.TempDir(), "known_hosts")
		if err := os.WriteFile(knownHosts, nil, 0o600); err != nil {
			t.Fatalf("writing known_hosts: %v", err)
		}

		client, _ := NewClient(&Config{Host: "dc1", User: "admin", Password: "secret", KnownHostsFile: knownHosts})
		callback, err := client.buildHostKeyCallback()
		if err != nil {
			t.Fatalf("buildHostKeyCallback() error = %v", err)
		}
		if callback == nil {
			t.Error("buildHostKeyCallback() returned nil callback")
		}
	})

	t.Run("missing known_hosts file", func(t *testing.T) {
		client, _ := NewClient(&Config{Host: "dc1", User: "admin", Password: "secret", KnownHostsFile: "/nonexistent/known_hosts"})
		if _, err := client.buildHostKeyCallback(); err == nil {
			t.Error("buildHostKeyCallback() expected error for missing known_hosts")
		}
	})
}

func TestClient_UnknownHostKeyRejected(t *testing.T) {
	server := startTestServer(t, func(string) reply { return reply{} })

	knownHosts := filepath.Join(t.TempDir(), "known_hosts")
	if err := os.WriteFile(knownHosts, nil, 0o600); err != nil {
		t.Fatalf("writing known_hosts: %v", err)
	}
	server.config.KnownHostsFile = knownHosts

	client, err := NewClient(server.config)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := client.Connection(context.Background()); err == nil {
		_ = client.Close()
		t.Fatal("Connection() expected host key error")
	}
}

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "unable to authenticate", err: errors.New("ssh: unable to authenticate"), want: true},
		{name: "no supported methods", err: errors.New("ssh: no supported methods remain"), want: true},
		{name: "permission denied", err: errors.New("Permission denied"), want: true},
		{name: "unrelated error", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAuthError(tt.err); got != tt.want {
				t.Errorf("isAuthError() = %v, want %v", got, tt.want)
			}
		})
	}
}

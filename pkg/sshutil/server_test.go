package sshutil

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

const (
	testUser     = "samba"
	testPassword = "hunter2"
)

// reply is what the test server answers to one exec request.
type reply struct {
	stdout string
	stderr string
	status uint32
}

// testServer is an in-process SSH server that answers exec requests from
// a callback and serves the sftp subsystem from the local filesystem.
type testServer struct {
	config *Config
	answer func(command string) reply

	mu       sync.Mutex
	commands []string
}

func startTestServer(t *testing.T, answer func(command string) reply) *testServer {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating host key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("creating signer: %v", err)
	}

	serverConfig := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == testUser && string(pass) == testPassword {
				return nil, nil
			}
			return nil, errors.New("access denied")
		},
	}
	serverConfig.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	s := &testServer{
		config: &Config{
			Host:     "127.0.0.1",
			Port:     ln.Addr().(*net.TCPAddr).Port,
			User:     testUser,
			Password: testPassword,
		},
		answer: answer,
	}

	go func() {
		for {
			nc, err := ln.Accept()
			if err != nil {
				return
			}
			go s.serveConn(nc, serverConfig)
		}
	}()

	return s
}

func (s *testServer) serveConn(nc net.Conn, config *ssh.ServerConfig) {
	_, chans, reqs, err := ssh.NewServerConn(nc, config)
	if err != nil {
		_ = nc.Close()
		return
	}
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			_ = newCh.Reject(ssh.UnknownChannelType, "session only")
			continue
		}
		ch, chReqs, err := newCh.Accept()
		if err != nil {
			continue
		}
		go s.serveSession(ch, chReqs)
	}
}

func (s *testServer) serveSession(ch ssh.Channel, reqs <-chan *ssh.Request) {
	defer func() { _ = ch.Close() }()

	for req := range reqs {
		var payload struct{ Value string }
		switch req.Type {
		case "exec":
			_ = ssh.Unmarshal(req.Payload, &payload)
			_ = req.Reply(true, nil)

			s.mu.Lock()
			s.commands = append(s.commands, payload.Value)
			s.mu.Unlock()

			r := s.answer(payload.Value)
			_, _ = io.WriteString(ch, r.stdout)
			_, _ = io.WriteString(ch.Stderr(), r.stderr)
			_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{r.status}))
			return
		case "subsystem":
			_ = ssh.Unmarshal(req.Payload, &payload)
			if payload.Value != "sftp" {
				_ = req.Reply(false, nil)
				continue
			}
			_ = req.Reply(true, nil)
			server, err := sftp.NewServer(ch)
			if err != nil {
				return
			}
			_ = server.Serve()
			return
		default:
			if req.WantReply {
				_ = req.Reply(false, nil)
			}
		}
	}
}

func (s *testServer) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

// Package ssh provides the SSH channel used to configure software on a
// freshly launched gateway instance.
//
// A Client makes exactly one connection attempt per Dial call; tolerating
// the post-launch window where the instance is not yet reachable is the
// lifecycle controller's job, applied through its retry policy. Host key
// verification is disabled: the instance is ephemeral and its host key is
// generated on first boot.
package ssh

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/vpngw/vpngw/internal/errdefs"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
)

// Config holds SSH client configuration.
type Config struct {
	Host       string
	Port       int
	User       string
	PrivateKey []byte

	// DialTimeout bounds a single connection attempt.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration
}

// Client executes commands on a remote host. The private key is parsed
// once at construction; connections are made per Session.
type Client struct {
	config *Config
	signer ssh.Signer
}

// NewClient creates a new SSH client and validates the private key.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config private key cannot be empty")
	}

	configCopy := *cfg
	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}

	signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Client{
		config: &configCopy,
		signer: signer,
	}, nil
}

// Session is an established connection to the remote host.
type Session struct {
	host   string
	client *ssh.Client
}

// Dial makes a single connection attempt, bounded by the configured dial
// timeout and the context. Failure to connect is reported as
// errdefs.ErrUnreachableHost.
func (c *Client) Dial(ctx context.Context) (*Session, error) {
	config := &ssh.ClientConfig{
		User: c.config.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(c.signer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // Ephemeral instance, key generated on first boot
		Timeout:         c.config.DialTimeout,
	}

	addr := net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))

	dialer := net.Dialer{Timeout: c.config.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing %s: %v", errdefs.ErrUnreachableHost, addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: ssh handshake with %s: %v", errdefs.ErrUnreachableHost, addr, err)
	}

	return &Session{
		host:   c.config.Host,
		client: ssh.NewClient(sshConn, chans, reqs),
	}, nil
}

// Execute runs a command on the remote host and returns its combined
// stdout and stderr.
func (s *Session) Execute(ctx context.Context, command string) (string, error) {
	sess, err := s.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create SSH session on %s: %w", s.host, err)
	}
	defer func() { _ = sess.Close() }()

	type result struct {
		output []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		output, err := sess.CombinedOutput(command)
		done <- result{output, err}
	}()

	select {
	case <-ctx.Done():
		_ = sess.Signal(ssh.SIGKILL)
		return "", fmt.Errorf("command on %s interrupted: %w", s.host, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return string(res.output), fmt.Errorf("command failed on %s: %w", s.host, res.err)
		}
		return string(res.output), nil
	}
}

// Close tears down the connection.
func (s *Session) Close() error {
	return s.client.Close()
}

package ssh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpngw/vpngw/internal/errdefs"
	"github.com/vpngw/vpngw/internal/keygen"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	kp, err := keygen.New(2048)
	require.NoError(t, err)
	return kp.PrivatePEM
}

func TestNewClient_Validation(t *testing.T) {
	key := testKey(t)

	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{"nil config", nil, "config cannot be nil"},
		{"missing host", &Config{User: "root", PrivateKey: key}, "host cannot be empty"},
		{"missing user", &Config{Host: "h", PrivateKey: key}, "user cannot be empty"},
		{"missing key", &Config{Host: "h", User: "root"}, "private key cannot be empty"},
		{"bad key", &Config{Host: "h", User: "root", PrivateKey: []byte("nonsense")}, "parse private key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(&Config{Host: "h", User: "root", PrivateKey: testKey(t)})
	require.NoError(t, err)
	assert.Equal(t, defaultPort, c.config.Port)
	assert.Equal(t, defaultDialTimeout, c.config.DialTimeout)
}

func TestDial_Unreachable(t *testing.T) {
	// Nothing listens on this port; a single attempt must fail fast with
	// the typed unreachable error, not retry internally.
	c, err := NewClient(&Config{
		Host:        "127.0.0.1",
		Port:        1, // reserved, nothing listening
		User:        "root",
		PrivateKey:  testKey(t),
		DialTimeout: 500 * time.Millisecond,
	})
	require.NoError(t, err)

	start := time.Now()
	_, err = c.Dial(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrUnreachableHost), "expected ErrUnreachableHost, got %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

package lifecycle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/vpngw/vpngw/internal/errdefs"
)

// State tracks how far a session has progressed through its lifecycle.
type State string

const (
	StateInit            State = "INIT"
	StateNetworkResolved State = "NETWORK_RESOLVED"
	StateSecured         State = "SECURED"
	StateLaunched        State = "LAUNCHED"
	StateConfigured      State = "CONFIGURED"
	StateVerified        State = "VERIFIED"
	StateActive          State = "ACTIVE"
	StateFailed          State = "FAILED"
	StateTerminating     State = "TERMINATING"
	StateTerminated      State = "TERMINATED"
)

// Session is the durable record of one gateway deployment: every cloud
// resource identifier needed to use, verify or tear it down later.
type Session struct {
	// ID distinguishes deployments that reused the same name.
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Region    string    `json:"region"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	NetworkID string `json:"network_id,omitempty"`
	ImageID   string `json:"image_id,omitempty"`

	KeyPairName string `json:"key_pair_name,omitempty"`
	KeyFile     string `json:"key_file,omitempty"`

	SecurityGroupID   string `json:"security_group_id,omitempty"`
	SecurityGroupName string `json:"security_group_name,omitempty"`

	InstanceID string `json:"instance_id,omitempty"`
	PublicIP   string `json:"public_ip,omitempty"`
	PublicDNS  string `json:"public_dns,omitempty"`

	HostedZoneID string `json:"hosted_zone_id,omitempty"`
	Hostname     string `json:"hostname,omitempty"`

	Port     int    `json:"port,omitempty"`
	Protocol string `json:"protocol,omitempty"`

	ProfileFile string `json:"profile_file,omitempty"`
}

func newSession(name, region string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Name:      name,
		Region:    region,
		State:     StateInit,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) transition(state State) {
	s.State = state
	s.UpdatedAt = time.Now().UTC()
}

// Usable reports whether the session describes a gateway that can be
// connected to.
func (s *Session) Usable() bool {
	return s.State == StateActive && s.InstanceID != "" && s.PublicIP != ""
}

// Store persists sessions as JSON files in a state directory. One file
// per session, named after it.
type Store struct {
	dir string
}

// NewStore builds a session store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Save writes the session file with owner-only permissions.
func (s *Store) Save(session *Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	if err := os.WriteFile(s.path(session.Name), data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// Load reads a session by name. A missing file is reported through
// errdefs.ErrNotFound.
func (s *Store) Load(name string) (*Session, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errdefs.NotFound("no session %q in %s", name, s.dir)
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decoding session file: %w", err)
	}
	return &session, nil
}

// Remove deletes the session file. Removing a session that does not
// exist is not an error.
func (s *Store) Remove(name string) error {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

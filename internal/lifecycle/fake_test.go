package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vpngw/vpngw/internal/config"
	"github.com/vpngw/vpngw/internal/configurator"
	"github.com/vpngw/vpngw/internal/errdefs"
	"github.com/vpngw/vpngw/internal/notify"
	"github.com/vpngw/vpngw/internal/platform/aws"
	sshpkg "github.com/vpngw/vpngw/internal/platform/ssh"
)

// fakeGateway is an in-memory cloud: created resources are tracked so
// tests can assert what exists after an operation.
type fakeGateway struct {
	mu sync.Mutex

	networkErr error
	imageErr   error
	importErr  error
	sgErr      error
	launchErr  error
	dnsErr     error

	// sgDeleteConflicts makes that many DeleteSecurityGroup calls fail
	// with DependencyViolation before succeeding.
	sgDeleteConflicts int

	// sgHeldByLiveInstance makes DeleteSecurityGroup fail with
	// DependencyViolation while any instance is not yet terminated,
	// mirroring the provider's network-interface reference.
	sgHeldByLiveInstance bool

	// pendingPolls makes DescribeInstance report pending that many
	// times before running.
	pendingPolls int

	// terminatePolls makes a terminated instance linger in
	// shutting-down for that many DescribeInstance calls.
	terminatePolls int

	keyPairs  map[string]bool
	groups    map[string]string // id -> name
	instances map[string]*aws.Instance
	records   map[string]string // hostname -> ip
	sgRules   []aws.Rule

	calls []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		keyPairs:  map[string]bool{},
		groups:    map[string]string{},
		instances: map[string]*aws.Instance{},
		records:   map[string]string{},
	}
}

func (f *fakeGateway) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeGateway) Region() string { return "us-west-2" }

func (f *fakeGateway) ResolveNetwork(_ context.Context, name string) (*aws.Network, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ResolveNetwork")
	if f.networkErr != nil {
		return nil, f.networkErr
	}
	return &aws.Network{ID: "vpc-0abc", Name: name, IsDefault: name == ""}, nil
}

func (f *fakeGateway) ResolveLatestImage(_ context.Context, _ string, _ []string) (*aws.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ResolveLatestImage")
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	return &aws.Image{ID: "ami-new", Name: "ubuntu-2024", CreationDate: "2024-06-01T00:00:00.000Z"}, nil
}

func (f *fakeGateway) ImportKeyPair(_ context.Context, _, name string, _ []byte) (*aws.KeyPairInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ImportKeyPair")
	if f.importErr != nil {
		return nil, f.importErr
	}
	f.keyPairs[name] = true
	return &aws.KeyPairInfo{ID: "key-0123", Name: name}, nil
}

func (f *fakeGateway) DeleteKeyPair(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteKeyPair")
	if !f.keyPairs[name] {
		return false, nil
	}
	delete(f.keyPairs, name)
	return true, nil
}

func (f *fakeGateway) CreateSecurityGroup(_ context.Context, _, name, _ string, rules []aws.Rule) (*aws.SecurityGroupInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateSecurityGroup")
	if f.sgErr != nil {
		return nil, f.sgErr
	}
	f.sgRules = rules
	id := fmt.Sprintf("sg-%04d", len(f.groups)+1)
	f.groups[id] = name
	return &aws.SecurityGroupInfo{ID: id, Name: name}, nil
}

func (f *fakeGateway) DeleteSecurityGroup(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteSecurityGroup")
	if f.sgDeleteConflicts > 0 {
		f.sgDeleteConflicts--
		return false, &errdefs.CloudAPIError{Op: "DeleteSecurityGroup", Code: "DependencyViolation", Message: "in use"}
	}
	if f.sgHeldByLiveInstance {
		for _, instance := range f.instances {
			if instance.State != "terminated" {
				return false, &errdefs.CloudAPIError{Op: "DeleteSecurityGroup", Code: "DependencyViolation", Message: "has a dependent object"}
			}
		}
	}
	if _, ok := f.groups[id]; !ok {
		return false, nil
	}
	delete(f.groups, id)
	return true, nil
}

func (f *fakeGateway) FindSecurityGroup(_ context.Context, name string) (*aws.SecurityGroupInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FindSecurityGroup")
	for id, n := range f.groups {
		if n == name {
			return &aws.SecurityGroupInfo{ID: id, Name: n}, nil
		}
	}
	return nil, errdefs.NotFound("no security group named %q", name)
}

func (f *fakeGateway) LaunchInstance(_ context.Context, opts aws.LaunchOpts) (*aws.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("LaunchInstance")
	if f.launchErr != nil {
		return nil, f.launchErr
	}
	instance := &aws.Instance{ID: "i-0456", State: "pending"}
	f.instances[instance.ID] = instance
	return instance, nil
}

func (f *fakeGateway) DescribeInstance(_ context.Context, id string) (*aws.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DescribeInstance")
	instance, ok := f.instances[id]
	if !ok {
		return nil, errdefs.NotFound("instance %s does not exist", id)
	}
	if instance.State == "pending" {
		if f.pendingPolls > 0 {
			f.pendingPolls--
		} else {
			instance.State = "running"
			instance.PublicIP = "198.51.100.7"
			instance.PublicDNS = "gw.example.com"
		}
	}
	if instance.State == "shutting-down" {
		if f.terminatePolls > 0 {
			f.terminatePolls--
		} else {
			instance.State = "terminated"
		}
	}
	copied := *instance
	return &copied, nil
}

func (f *fakeGateway) TerminateInstance(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("TerminateInstance")
	instance, ok := f.instances[id]
	if !ok {
		return false, nil
	}
	if f.terminatePolls > 0 {
		instance.State = "shutting-down"
	} else {
		instance.State = "terminated"
	}
	return true, nil
}

func (f *fakeGateway) UpsertRecord(_ context.Context, _, hostname, ip string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertRecord")
	if f.dnsErr != nil {
		return f.dnsErr
	}
	f.records[hostname] = ip
	return nil
}

func (f *fakeGateway) DeleteRecord(_ context.Context, _, hostname, ip string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteRecord")
	if f.dnsErr != nil {
		return false, f.dnsErr
	}
	if f.records[hostname] != ip {
		return false, nil
	}
	delete(f.records, hostname)
	return true, nil
}

func (f *fakeGateway) FindInstance(_ context.Context, _ string) (*aws.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FindInstance")
	for _, instance := range f.instances {
		if instance.State != "terminated" {
			copied := *instance
			return &copied, nil
		}
	}
	return nil, errdefs.NotFound("no live instance")
}

// liveResources reports what still exists in the fake cloud.
func (f *fakeGateway) liveResources() (keyPairs, groups, instances int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, instance := range f.instances {
		if instance.State != "terminated" {
			instances++
		}
	}
	return len(f.keyPairs), len(f.groups), instances
}

// fakeRemote satisfies remoteRunner without a network.
type fakeRemote struct {
	executed []string
}

func (f *fakeRemote) Execute(_ context.Context, command string) (string, error) {
	f.executed = append(f.executed, command)
	return "", nil
}

func (f *fakeRemote) Close() error { return nil }

// stubRemote replaces the SSH and configurator factories for one test.
func stubRemote(t *testing.T, setupErr error, report configurator.Report) *fakeRemote {
	t.Helper()
	remote := &fakeRemote{}

	origDial, origSetup, origSelfTest, origWait, origBits := dialRemote, setupVPN, runSelfTest, waitForPort, keyBits
	t.Cleanup(func() {
		dialRemote, setupVPN, runSelfTest, waitForPort, keyBits = origDial, origSetup, origSelfTest, origWait, origBits
	})

	keyBits = 1024
	waitForPort = func(context.Context, string, int, time.Duration, time.Duration) error {
		return nil
	}
	dialRemote = func(context.Context, *sshpkg.Config) (remoteRunner, error) {
		return remote, nil
	}
	setupVPN = func(context.Context, configurator.Runner, configurator.Params) (string, error) {
		if setupErr != nil {
			return "", setupErr
		}
		return "client\nremote 198.51.100.7 1194\n", nil
	}
	runSelfTest = func(context.Context, configurator.Runner, string, int, string) configurator.Report {
		return report
	}
	return remote
}

func healthyReport() configurator.Report {
	return configurator.Report{ServiceActive: true, PortListening: true, Reachable: true}
}

// testController wires a controller against the fake gateway with fast
// timeouts and an isolated state dir.
func testController(t *testing.T, gw *fakeGateway) (*Controller, *config.Config, *recordingNotifier) {
	t.Helper()
	cfg := config.Default()
	cfg.Session = "demo"
	cfg.StateDir = t.TempDir()

	timeouts := &config.Timeouts{
		InstanceRunning:  2 * time.Second,
		SSHReady:         2 * time.Second,
		Configure:        2 * time.Second,
		Delete:           2 * time.Second,
		PollInterval:     time.Millisecond,
		RetryMaxAttempts: 3,
		RetryDelay:       time.Millisecond,
	}

	notifier := &recordingNotifier{}
	store := NewStore(cfg.StateDir)
	return New(cfg, timeouts, gw, notifier, store), cfg, notifier
}

// recordingNotifier captures milestones for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingNotifier) Send(_ context.Context, event notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingNotifier) event(milestone string) (notify.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Milestone == milestone {
			return e, true
		}
	}
	return notify.Event{}, false
}

func (r *recordingNotifier) milestones() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Milestone)
	}
	return out
}

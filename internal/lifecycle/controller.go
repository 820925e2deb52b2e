// Package lifecycle sequences the gateway operations: create, test,
// reconfigure and delete. It owns all retry, timeout and cleanup
// decisions; the cloud gateway and the remote configurator underneath
// it stay single-attempt.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"

	"github.com/vpngw/vpngw/internal/config"
	"github.com/vpngw/vpngw/internal/configurator"
	"github.com/vpngw/vpngw/internal/errdefs"
	"github.com/vpngw/vpngw/internal/keygen"
	"github.com/vpngw/vpngw/internal/notify"
	"github.com/vpngw/vpngw/internal/platform/aws"
	sshpkg "github.com/vpngw/vpngw/internal/platform/ssh"
	"github.com/vpngw/vpngw/internal/util/netutil"
	"github.com/vpngw/vpngw/internal/util/retry"
)

// Gateway is the cloud surface the controller sequences. Implemented by
// platform/aws.Gateway; tests substitute a fake.
type Gateway interface {
	Region() string
	ResolveNetwork(ctx context.Context, name string) (*aws.Network, error)
	ResolveLatestImage(ctx context.Context, nameFilter string, owners []string) (*aws.Image, error)
	ImportKeyPair(ctx context.Context, session, name string, publicKey []byte) (*aws.KeyPairInfo, error)
	DeleteKeyPair(ctx context.Context, name string) (bool, error)
	CreateSecurityGroup(ctx context.Context, session, name, vpcID string, rules []aws.Rule) (*aws.SecurityGroupInfo, error)
	DeleteSecurityGroup(ctx context.Context, id string) (bool, error)
	FindSecurityGroup(ctx context.Context, name string) (*aws.SecurityGroupInfo, error)
	LaunchInstance(ctx context.Context, opts aws.LaunchOpts) (*aws.Instance, error)
	DescribeInstance(ctx context.Context, id string) (*aws.Instance, error)
	TerminateInstance(ctx context.Context, id string) (bool, error)
	FindInstance(ctx context.Context, session string) (*aws.Instance, error)
	UpsertRecord(ctx context.Context, zoneID, hostname, ip string) error
	DeleteRecord(ctx context.Context, zoneID, hostname, ip string) (bool, error)
}

// remoteRunner is an established SSH connection.
type remoteRunner interface {
	configurator.Runner
	Close() error
}

// Factory variables substituted by tests.
var (
	dialRemote = func(ctx context.Context, cfg *sshpkg.Config) (remoteRunner, error) {
		client, err := sshpkg.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return client.Dial(ctx)
	}
	setupVPN    = configurator.Setup
	runSelfTest = configurator.SelfTest
	waitForPort = netutil.WaitForPort
	keyBits     = keygen.DefaultBits
)

// Controller drives gateway lifecycle operations for one session.
type Controller struct {
	cfg      *config.Config
	timeouts *config.Timeouts
	gateway  Gateway
	notifier notify.Notifier
	store    *Store
}

// New builds a Controller. The notifier may be an empty notify.Multi;
// it is never nil-checked.
func New(cfg *config.Config, timeouts *config.Timeouts, gateway Gateway, notifier notify.Notifier, store *Store) *Controller {
	return &Controller{
		cfg:      cfg,
		timeouts: timeouts,
		gateway:  gateway,
		notifier: notifier,
		store:    store,
	}
}

// cloudPolicy is the retry policy applied to individual cloud calls.
func (c *Controller) cloudPolicy() retry.Policy {
	return retry.Policy{
		Attempts: c.timeouts.RetryMaxAttempts,
		Delay:    c.timeouts.RetryDelay,
		Timeout:  c.timeouts.InstanceRunning,
	}
}

// withTransientRetry runs op under the cloud retry policy, retrying
// only provider-side transient failures. Not-found and any other
// provider rejection abort immediately.
func (c *Controller) withTransientRetry(ctx context.Context, op func(ctx context.Context) error) error {
	return c.cloudPolicy().Do(ctx, func(ctx context.Context) error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if errdefs.IsNotFound(err) || !aws.IsTransient(err) {
			return retry.Fatal(err)
		}
		return err
	})
}

// notifyEvent reports a milestone through the configured channels.
func (c *Controller) notifyEvent(ctx context.Context, milestone, detail string, severity notify.Severity, fields map[string]string) {
	_ = c.notifier.Send(ctx, notify.Event{
		Milestone: milestone,
		Session:   c.cfg.Session,
		Detail:    detail,
		Severity:  severity,
		Fields:    fields,
	})
}

// dialWithRetry establishes the SSH connection, tolerating the window
// after boot where the host does not answer yet. The TCP port is
// awaited first; the handshake then retries with growing delays while
// sshd comes up.
func (c *Controller) dialWithRetry(ctx context.Context, host string, privateKey []byte) (remoteRunner, error) {
	if err := waitForPort(ctx, host, 22, c.timeouts.PollInterval, c.timeouts.SSHReady); err != nil {
		return nil, fmt.Errorf("%w: %v", errdefs.ErrUnreachableHost, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.SSHReady)
	defer cancel()

	var runner remoteRunner
	err := retry.WithExponentialBackoff(ctx, func() error {
		r, err := dialRemote(ctx, &sshpkg.Config{
			Host:       host,
			User:       c.cfg.SSH.User,
			PrivateKey: privateKey,
		})
		if err != nil {
			if errors.Is(err, errdefs.ErrUnreachableHost) {
				return err
			}
			return retry.Fatal(err)
		}
		runner = r
		return nil
	},
		retry.WithMaxRetries(c.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(c.timeouts.RetryDelay),
	)
	if err != nil {
		return nil, err
	}
	return runner, nil
}

// selfTestWithRetry repeats the self test while probes fail, giving
// freshly installed services time to come up. The last report is
// returned either way; the caller decides what an unhealthy one means.
func (c *Controller) selfTestWithRetry(ctx context.Context, runner remoteRunner, host string, port int, protocol string) configurator.Report {
	policy := retry.Policy{
		Attempts: c.timeouts.RetryMaxAttempts,
		Delay:    c.timeouts.RetryDelay,
		Timeout:  c.timeouts.Configure,
	}

	var report configurator.Report
	_ = policy.Do(ctx, func(ctx context.Context) error {
		report = runSelfTest(ctx, runner, host, port, protocol)
		if !report.Healthy() {
			return fmt.Errorf("self test unhealthy: %v", report.Diagnostics)
		}
		return nil
	})
	return report
}

// waitForInstance polls until the instance is running with a public
// address, or the bound expires.
func (c *Controller) waitForInstance(ctx context.Context, id string) (*aws.Instance, error) {
	log := clog.FromContext(ctx)

	deadline := time.Now().Add(c.timeouts.InstanceRunning)
	for {
		instance, err := c.gateway.DescribeInstance(ctx, id)
		if err != nil && !aws.IsTransient(err) {
			return nil, err
		}
		if instance != nil {
			switch instance.State {
			case "running":
				if instance.PublicIP != "" {
					return instance, nil
				}
				log.Info("instance running, waiting for public address", "instance", id)
			case "terminated", "shutting-down":
				return nil, &errdefs.ProvisioningError{
					Step: "instance wait",
					Err:  errors.New("instance " + id + " went to " + instance.State),
				}
			default:
				log.Info("waiting for instance", "instance", id, "state", instance.State)
			}
		}

		if time.Now().After(deadline) {
			return nil, errdefs.ErrProvisioningTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.timeouts.PollInterval):
		}
	}
}

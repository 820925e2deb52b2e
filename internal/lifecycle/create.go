package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chainguard-dev/clog"

	"github.com/vpngw/vpngw/internal/configurator"
	"github.com/vpngw/vpngw/internal/errdefs"
	"github.com/vpngw/vpngw/internal/keygen"
	"github.com/vpngw/vpngw/internal/notify"
	"github.com/vpngw/vpngw/internal/platform/aws"
	"github.com/vpngw/vpngw/internal/util/naming"
	"github.com/vpngw/vpngw/internal/util/retry"
)

// ingressRules is the exact rule set a gateway's security group gets:
// the VPN listener open to clients, SSH restricted to the admin range.
// Nothing else is ever opened.
func (c *Controller) ingressRules() []aws.Rule {
	return []aws.Rule{
		{Protocol: c.cfg.VPN.Protocol, Port: int32(c.cfg.VPN.Port), CIDR: "0.0.0.0/0"},
		{Protocol: "tcp", Port: 22, CIDR: c.cfg.AdminCIDR},
	}
}

// Create provisions a complete gateway: network resolution, key pair,
// security group, instance, VPN installation and verification. On any
// failure everything created so far is released in reverse order and
// the session is recorded as failed.
func (c *Controller) Create(ctx context.Context) (*Session, error) {
	log := clog.FromContext(ctx)
	name := c.cfg.Session

	if existing, err := c.store.Load(name); err == nil && existing.State != StateTerminated && existing.State != StateFailed {
		return nil, fmt.Errorf("session %q already exists in state %s; delete it first", name, existing.State)
	}

	session := newSession(name, c.cfg.Region)
	stack := NewStack()

	c.notifyEvent(ctx, "gateway.creating", "provisioning started", notify.SeverityInfo, nil)

	result, err := c.create(ctx, session, stack)
	if err != nil {
		log.Error("gateway creation failed, releasing resources", "error", err)
		c.notifyEvent(ctx, "gateway.create.failed", err.Error(), notify.SeverityError, nil)

		if unwindErr := stack.Unwind(ctx); unwindErr != nil {
			log.Error("cleanup incomplete, resources may remain", "error", unwindErr)
			c.notifyEvent(ctx, "gateway.cleanup.incomplete", unwindErr.Error(), notify.SeverityError, nil)
		}

		session.transition(StateFailed)
		if saveErr := c.store.Save(session); saveErr != nil {
			log.Error("could not record failed session", "error", saveErr)
		}
		return nil, err
	}

	return result, nil
}

func (c *Controller) create(ctx context.Context, session *Session, stack *Stack) (*Session, error) {
	log := clog.FromContext(ctx)

	// Resolution first: both lookups are side-effect free, so a missing
	// network or image aborts before anything exists to clean up.
	network, err := c.gateway.ResolveNetwork(ctx, c.cfg.Network)
	if err != nil {
		return nil, err
	}
	session.NetworkID = network.ID

	image, err := c.gateway.ResolveLatestImage(ctx, c.cfg.Image.NameFilter, c.cfg.Image.Owners)
	if err != nil {
		return nil, err
	}
	session.ImageID = image.ID
	session.transition(StateNetworkResolved)

	keyPair, err := keygen.New(keyBits)
	if err != nil {
		return nil, &errdefs.ProvisioningError{Step: "key generation", Err: err}
	}

	keyFile := filepath.Join(c.cfg.StateDir, naming.KeyFile(session.Name))
	if err := keyPair.WritePrivateKey(keyFile); err != nil {
		return nil, &errdefs.ProvisioningError{Step: "key persistence", Err: err}
	}
	stack.Push(func(context.Context) error {
		return os.Remove(keyFile)
	})
	session.KeyFile = keyFile

	keyName := naming.KeyPair(session.Name)
	err = c.withTransientRetry(ctx, func(ctx context.Context) error {
		_, err := c.gateway.ImportKeyPair(ctx, session.Name, keyName, keyPair.PublicKey)
		return err
	})
	if err != nil {
		return nil, err
	}
	stack.Push(func(ctx context.Context) error {
		_, err := c.gateway.DeleteKeyPair(ctx, keyName)
		return err
	})
	session.KeyPairName = keyName

	sgName := naming.SecurityGroup(session.Name)
	var sg *aws.SecurityGroupInfo
	err = c.withTransientRetry(ctx, func(ctx context.Context) error {
		var err error
		sg, err = c.gateway.CreateSecurityGroup(ctx, session.Name, sgName, network.ID, c.ingressRules())
		return err
	})
	if err != nil {
		return nil, err
	}
	stack.Push(func(ctx context.Context) error {
		_, err := c.deleteSecurityGroup(ctx, sg.ID)
		return err
	})
	session.SecurityGroupID = sg.ID
	session.SecurityGroupName = sgName
	session.transition(StateSecured)

	var launched *aws.Instance
	err = c.withTransientRetry(ctx, func(ctx context.Context) error {
		var err error
		launched, err = c.gateway.LaunchInstance(ctx, aws.LaunchOpts{
			Session:         session.Name,
			Name:            naming.Instance(session.Name),
			ImageID:         image.ID,
			InstanceType:    c.cfg.InstanceType,
			KeyName:         keyName,
			SecurityGroupID: sg.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	// The group cannot be deleted until the instance's network interface
	// is gone, so the teardown waits for termination first.
	stack.Push(func(ctx context.Context) error {
		_, err := c.terminateAndWait(ctx, launched.ID)
		return err
	})
	session.InstanceID = launched.ID

	instance, err := c.waitForInstance(ctx, launched.ID)
	if err != nil {
		return nil, err
	}
	session.PublicIP = instance.PublicIP
	session.PublicDNS = instance.PublicDNS
	session.transition(StateLaunched)
	log.Info("instance is up", "instance", instance.ID, "ip", instance.PublicIP)

	endpoint := instance.PublicIP
	if c.cfg.DNS.Enabled() {
		zone, hostname := c.cfg.DNS.HostedZoneID, c.cfg.DNS.Hostname
		ip := instance.PublicIP
		err = c.withTransientRetry(ctx, func(ctx context.Context) error {
			return c.gateway.UpsertRecord(ctx, zone, hostname, ip)
		})
		if err != nil {
			return nil, err
		}
		stack.Push(func(ctx context.Context) error {
			_, err := c.gateway.DeleteRecord(ctx, zone, hostname, ip)
			return err
		})
		session.HostedZoneID = zone
		session.Hostname = hostname
		endpoint = hostname
		log.Info("address record set", "hostname", hostname, "ip", ip)
	}

	runner, err := c.dialWithRetry(ctx, instance.PublicIP, keyPair.PrivatePEM)
	if err != nil {
		return nil, err
	}
	defer func() { _ = runner.Close() }()

	profile, err := c.configure(ctx, runner, endpoint)
	if err != nil {
		return nil, err
	}
	session.Port = c.cfg.VPN.Port
	session.Protocol = c.cfg.VPN.Protocol
	session.transition(StateConfigured)

	profileFile := filepath.Join(c.cfg.StateDir, session.Name+".ovpn")
	if err := os.WriteFile(profileFile, []byte(profile), 0o600); err != nil {
		return nil, &errdefs.ProvisioningError{Step: "profile persistence", Err: err}
	}
	stack.Push(func(context.Context) error {
		return os.Remove(profileFile)
	})
	session.ProfileFile = profileFile

	report := c.selfTestWithRetry(ctx, runner, instance.PublicIP, c.cfg.VPN.Port, c.cfg.VPN.Protocol)
	if !report.Healthy() {
		return nil, &errdefs.ConfigurationError{
			Host: instance.PublicIP,
			Err:  fmt.Errorf("self test failed: %v", report.Diagnostics),
		}
	}
	session.transition(StateVerified)

	session.transition(StateActive)
	if err := c.store.Save(session); err != nil {
		return nil, &errdefs.ProvisioningError{Step: "session persistence", Err: err}
	}

	fields := map[string]string{
		"instance": session.InstanceID,
		"ip":       session.PublicIP,
		"port":     fmt.Sprintf("%d/%s", session.Port, session.Protocol),
	}
	if session.Hostname != "" {
		fields["hostname"] = session.Hostname
	}
	c.notifyEvent(ctx, "gateway.created", "gateway is active", notify.SeverityInfo, fields)
	log.Info("gateway active", "session", session.Name, "instance", session.InstanceID)
	return session, nil
}

// configure installs the VPN server, retrying bounded configuration
// failures before giving up.
func (c *Controller) configure(ctx context.Context, runner remoteRunner, endpoint string) (string, error) {
	params := configurator.Params{
		Endpoint:      endpoint,
		Port:          c.cfg.VPN.Port,
		Protocol:      c.cfg.VPN.Protocol,
		ClientName:    c.cfg.VPN.ClientName,
		AdminUser:     c.cfg.VPN.AdminUser,
		AdminPassword: c.cfg.VPN.AdminPassword,
	}

	policy := retry.Policy{
		Attempts: c.timeouts.RetryMaxAttempts,
		Delay:    c.timeouts.RetryDelay,
		Timeout:  c.timeouts.Configure,
	}

	var profile string
	err := policy.Do(ctx, func(ctx context.Context) error {
		var err error
		profile, err = setupVPN(ctx, runner, params)
		if err != nil && !errdefs.IsConfigurationError(err) {
			return retry.Fatal(err)
		}
		return err
	})
	return profile, err
}

package lifecycle

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/chainguard-dev/clog"

	"github.com/vpngw/vpngw/internal/errdefs"
	"github.com/vpngw/vpngw/internal/notify"
	"github.com/vpngw/vpngw/internal/platform/aws"
	"github.com/vpngw/vpngw/internal/util/naming"
	"github.com/vpngw/vpngw/internal/util/retry"
)

// Delete tears down every resource of the session: instance first, then
// security group, key pair, address record, and the local key, profile
// and state files. It is idempotent: resources already gone are skipped,
// and a session that never existed is a successful no-op. The final
// notification summarizes, per resource, whether it was removed or was
// already absent.
func (c *Controller) Delete(ctx context.Context) error {
	log := clog.FromContext(ctx)
	name := c.cfg.Session

	session, err := c.store.Load(name)
	if err != nil {
		if !errdefs.IsNotFound(err) {
			return err
		}
		// No local state. The instance may still exist from an earlier
		// run whose state file was lost; find it by tag.
		session = newSession(name, c.cfg.Region)
		session.KeyPairName = naming.KeyPair(name)
		session.SecurityGroupName = naming.SecurityGroup(name)
		if c.cfg.DNS.Enabled() {
			session.HostedZoneID = c.cfg.DNS.HostedZoneID
			session.Hostname = c.cfg.DNS.Hostname
		}
		if instance, err := c.gateway.FindInstance(ctx, name); err == nil {
			session.InstanceID = instance.ID
			session.PublicIP = instance.PublicIP
		} else if !errdefs.IsNotFound(err) {
			return err
		}
	}

	session.transition(StateTerminating)
	c.notifyEvent(ctx, "gateway.deleting", "teardown started", notify.SeverityInfo, nil)

	summary := map[string]string{}
	mark := func(resource string, removed bool) {
		if removed {
			summary[resource] = "removed"
		} else {
			summary[resource] = "not found"
		}
	}

	var errs []error

	if session.InstanceID != "" {
		found, err := c.terminateAndWait(ctx, session.InstanceID)
		if err != nil {
			errs = append(errs, err)
		} else {
			mark("instance", found)
		}
	} else {
		mark("instance", false)
	}

	if session.SecurityGroupID != "" {
		found, err := c.deleteSecurityGroup(ctx, session.SecurityGroupID)
		if err != nil {
			errs = append(errs, err)
		} else {
			mark("security_group", found)
		}
	} else if session.SecurityGroupName != "" {
		if sg, err := c.gateway.FindSecurityGroup(ctx, session.SecurityGroupName); err == nil {
			found, err := c.deleteSecurityGroup(ctx, sg.ID)
			if err != nil {
				errs = append(errs, err)
			} else {
				mark("security_group", found)
			}
		} else if errdefs.IsNotFound(err) {
			mark("security_group", false)
		} else {
			errs = append(errs, err)
		}
	}

	keyName := session.KeyPairName
	if keyName == "" {
		keyName = naming.KeyPair(name)
	}
	if found, err := c.gateway.DeleteKeyPair(ctx, keyName); err != nil {
		errs = append(errs, err)
	} else {
		mark("key_pair", found)
	}

	if session.Hostname != "" && session.HostedZoneID != "" {
		if session.PublicIP != "" {
			found, err := c.gateway.DeleteRecord(ctx, session.HostedZoneID, session.Hostname, session.PublicIP)
			if err != nil {
				errs = append(errs, err)
			} else {
				mark("dns_record", found)
			}
		} else {
			// Without the record value there is nothing to match the
			// delete against.
			mark("dns_record", false)
		}
	}

	for resource, file := range map[string]string{
		"key_file":     session.KeyFile,
		"profile_file": session.ProfileFile,
	} {
		if file == "" {
			continue
		}
		switch err := os.Remove(file); {
		case err == nil:
			mark(resource, true)
		case os.IsNotExist(err):
			mark(resource, false)
		default:
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		session.transition(StateTerminating)
		if saveErr := c.store.Save(session); saveErr != nil {
			log.Error("could not record partial teardown", "error", saveErr)
		}
		c.notifyEvent(ctx, "gateway.delete.failed", err.Error(), notify.SeverityError, summary)
		return err
	}

	if err := c.store.Remove(name); err != nil {
		return err
	}
	c.notifyEvent(ctx, "gateway.deleted", "teardown complete", notify.SeverityInfo, summary)
	log.Info("gateway deleted", "session", name, "summary", summary)
	return nil
}

// terminateAndWait requests termination and waits until the provider
// reports the instance terminated or gone, so dependent resources like
// the security group can be deleted afterwards. The returned bool
// reports whether the instance still existed.
func (c *Controller) terminateAndWait(ctx context.Context, id string) (bool, error) {
	log := clog.FromContext(ctx)

	found, err := c.gateway.TerminateInstance(ctx, id)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	deadline := time.Now().Add(c.timeouts.Delete)
	for {
		instance, err := c.gateway.DescribeInstance(ctx, id)
		if err != nil {
			if errdefs.IsNotFound(err) {
				return true, nil
			}
			if !aws.IsTransient(err) {
				return true, err
			}
		} else if instance.State == "terminated" {
			return true, nil
		} else {
			log.Info("waiting for termination", "instance", id, "state", instance.State)
		}

		if time.Now().After(deadline) {
			return true, errdefs.ErrProvisioningTimeout
		}
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case <-time.After(c.timeouts.PollInterval):
		}
	}
}

// deleteSecurityGroup deletes the group, retrying while the terminated
// instance's network interface still holds a reference to it.
func (c *Controller) deleteSecurityGroup(ctx context.Context, id string) (bool, error) {
	policy := retry.Policy{
		Attempts: c.timeouts.RetryMaxAttempts,
		Delay:    c.timeouts.RetryDelay,
		Timeout:  c.timeouts.Delete,
	}

	var found bool
	err := policy.Do(ctx, func(ctx context.Context) error {
		var err error
		found, err = c.gateway.DeleteSecurityGroup(ctx, id)
		if err == nil {
			return nil
		}
		if aws.IsDependencyViolation(err) || aws.IsTransient(err) {
			return err
		}
		return retry.Fatal(err)
	})
	return found, err
}

package lifecycle

import (
	"context"
	"fmt"
	"os"

	"github.com/chainguard-dev/clog"

	"github.com/vpngw/vpngw/internal/errdefs"
	"github.com/vpngw/vpngw/internal/notify"
)

// Reconfigure re-runs the VPN installation on the existing instance
// with the current configuration. Cloud resources are left untouched;
// only the software on the instance changes. The operation is not
// atomic: if it fails partway the instance may need another
// reconfigure or a delete and create.
func (c *Controller) Reconfigure(ctx context.Context) (*Session, error) {
	log := clog.FromContext(ctx)

	session, err := c.store.Load(c.cfg.Session)
	if err != nil {
		return nil, err
	}
	if !session.Usable() {
		return nil, fmt.Errorf("session %q is in state %s, cannot reconfigure", session.Name, session.State)
	}

	privateKey, err := os.ReadFile(session.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}

	runner, err := c.dialWithRetry(ctx, session.PublicIP, privateKey)
	if err != nil {
		// The instance exists but cannot be reached, which is a
		// configuration-level failure, not a provisioning one.
		err = &errdefs.ConfigurationError{Host: session.PublicIP, Err: err}
		c.notifyEvent(ctx, "gateway.reconfigure.failed", err.Error(), notify.SeverityError, nil)
		return nil, err
	}
	defer func() { _ = runner.Close() }()

	endpoint := session.PublicIP
	if session.Hostname != "" {
		endpoint = session.Hostname
	}

	profile, err := c.configure(ctx, runner, endpoint)
	if err != nil {
		c.notifyEvent(ctx, "gateway.reconfigure.failed", err.Error(), notify.SeverityError, nil)
		return nil, err
	}

	if session.ProfileFile != "" {
		if err := os.WriteFile(session.ProfileFile, []byte(profile), 0o600); err != nil {
			return nil, fmt.Errorf("writing client profile: %w", err)
		}
	}

	session.Port = c.cfg.VPN.Port
	session.Protocol = c.cfg.VPN.Protocol
	session.transition(StateActive)
	if err := c.store.Save(session); err != nil {
		return nil, err
	}

	c.notifyEvent(ctx, "gateway.reconfigured", "vpn settings applied", notify.SeverityInfo, map[string]string{
		"port": fmt.Sprintf("%d/%s", session.Port, session.Protocol),
	})
	log.Info("gateway reconfigured", "session", session.Name, "port", session.Port, "protocol", session.Protocol)
	return session, nil
}

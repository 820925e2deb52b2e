package lifecycle

import (
	"context"
	"fmt"
	"os"

	"github.com/chainguard-dev/clog"

	"github.com/vpngw/vpngw/internal/configurator"
	"github.com/vpngw/vpngw/internal/notify"
)

// Test probes an existing gateway end to end and returns the report.
// It never mutates the session or any cloud resource.
func (c *Controller) Test(ctx context.Context) (configurator.Report, error) {
	log := clog.FromContext(ctx)
	var report configurator.Report

	session, err := c.store.Load(c.cfg.Session)
	if err != nil {
		return report, err
	}
	if !session.Usable() {
		return report, fmt.Errorf("session %q is in state %s, nothing to test", session.Name, session.State)
	}

	instance, err := c.gateway.DescribeInstance(ctx, session.InstanceID)
	if err != nil {
		return report, err
	}
	if instance.State != "running" {
		return report, fmt.Errorf("instance %s is %s, expected running", instance.ID, instance.State)
	}

	privateKey, err := os.ReadFile(session.KeyFile)
	if err != nil {
		return report, fmt.Errorf("reading private key: %w", err)
	}

	runner, err := c.dialWithRetry(ctx, session.PublicIP, privateKey)
	if err != nil {
		return report, err
	}
	defer func() { _ = runner.Close() }()

	report = c.selfTestWithRetry(ctx, runner, session.PublicIP, session.Port, session.Protocol)
	if report.Healthy() {
		log.Info("gateway test passed", "session", session.Name)
		c.notifyEvent(ctx, "gateway.test.passed", "all probes passed", notify.SeverityInfo, nil)
	} else {
		log.Error("gateway test failed", "session", session.Name, "diagnostics", report.Diagnostics)
		c.notifyEvent(ctx, "gateway.test.failed", fmt.Sprintf("%v", report.Diagnostics), notify.SeverityError, nil)
	}
	return report, nil
}

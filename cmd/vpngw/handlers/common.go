// Package handlers implements the CLI commands. Command wiring lives in
// the commands package; everything here takes a context and plain
// arguments, with cloud and remote dependencies behind factory
// variables so tests can substitute fakes.
package handlers

import (
	"context"

	"github.com/vpngw/vpngw/internal/config"
	"github.com/vpngw/vpngw/internal/lifecycle"
	"github.com/vpngw/vpngw/internal/notify"
	"github.com/vpngw/vpngw/internal/platform/aws"
)

// Factory function variables - can be replaced in tests.
var (
	loadConfig = config.Load

	newGateway = func(ctx context.Context, region string) (lifecycle.Gateway, error) {
		return aws.New(ctx, region)
	}
)

// buildController assembles a lifecycle controller from a config file.
func buildController(ctx context.Context, configPath string) (*lifecycle.Controller, *config.Config, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	gateway, err := newGateway(ctx, cfg.Region)
	if err != nil {
		return nil, nil, err
	}

	controller := lifecycle.New(
		cfg,
		config.LoadTimeouts(),
		gateway,
		buildNotifier(cfg),
		lifecycle.NewStore(cfg.StateDir),
	)
	return controller, cfg, nil
}

// buildNotifier wires the configured notification channels. With none
// configured the returned notifier is a no-op.
func buildNotifier(cfg *config.Config) notify.Notifier {
	var channels []notify.Notifier
	if cfg.Notifications.WebhookURL != "" {
		channels = append(channels, notify.NewWebhook(cfg.Notifications.WebhookURL))
	}
	if email := cfg.Notifications.Email; email.Enabled() {
		channels = append(channels, notify.NewSMTP(notify.SMTPConfig{
			Host:     email.Host,
			Port:     email.Port,
			Username: email.Username,
			Password: email.Password,
			From:     email.From,
			To:       email.To,
		}))
	}
	return notify.NewMulti(channels...)
}

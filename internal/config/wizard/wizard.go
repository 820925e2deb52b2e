// Package wizard provides the interactive first-run configuration flow.
//
// It uses charmbracelet/huh for form-based input and produces a Config
// ready to be written with config.Write. Callers should gate it on a
// terminal check; in non-interactive contexts the flags and defaults
// path applies instead.
package wizard

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/vpngw/vpngw/internal/config"
)

// Result holds the wizard answers before they are folded into a Config.
type Result struct {
	Session      string
	Region       string
	InstanceType string

	VPNPort     string
	VPNProtocol string

	AdminCIDR string

	WebhookURL string
	EmailTo    string
	EmailHost  string
	EmailFrom  string
}

var regionOptions = []huh.Option[string]{
	huh.NewOption("US West (Oregon)", "us-west-2"),
	huh.NewOption("US East (N. Virginia)", "us-east-1"),
	huh.NewOption("EU (Frankfurt)", "eu-central-1"),
	huh.NewOption("EU (Ireland)", "eu-west-1"),
	huh.NewOption("Asia Pacific (Singapore)", "ap-southeast-1"),
}

var instanceTypeOptions = []huh.Option[string]{
	huh.NewOption("t3.micro (2 vCPU, 1 GB)", "t3.micro"),
	huh.NewOption("t3.small (2 vCPU, 2 GB)", "t3.small"),
	huh.NewOption("t3.medium (2 vCPU, 4 GB)", "t3.medium"),
}

// Run walks the operator through the configuration questions and
// returns a validated Config.
func Run(ctx context.Context) (*config.Config, error) {
	def := config.Default()
	result := &Result{
		Session:      def.Session,
		Region:       def.Region,
		InstanceType: def.InstanceType,
		VPNPort:      strconv.Itoa(def.VPN.Port),
		VPNProtocol:  def.VPN.Protocol,
		AdminCIDR:    def.AdminCIDR,
	}

	if err := runIdentityGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("gateway identity: %w", err)
	}
	if err := runVPNGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("vpn settings: %w", err)
	}
	if err := runNotificationGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("notifications: %w", err)
	}

	return BuildConfig(result)
}

func runIdentityGroup(ctx context.Context, result *Result) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Session Name").
				Description("Names every cloud resource of this gateway. Lowercase alphanumerics and hyphens.").
				Placeholder("vpn").
				Value(&result.Session).
				Validate(validateSession),
			huh.NewSelect[string]().
				Title("Region").
				Description("Where the gateway instance runs").
				Options(regionOptions...).
				Value(&result.Region),
			huh.NewSelect[string]().
				Title("Instance Type").
				Options(instanceTypeOptions...).
				Value(&result.InstanceType),
		).Title("Gateway Identity"),
	).RunWithContext(ctx)
}

func runVPNGroup(ctx context.Context, result *Result) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("VPN Port").
				Description("Port the VPN server listens on").
				Value(&result.VPNPort).
				Validate(validatePort),
			huh.NewSelect[string]().
				Title("VPN Protocol").
				Options(
					huh.NewOption("UDP (recommended)", "udp"),
					huh.NewOption("TCP (for restrictive networks)", "tcp"),
				).
				Value(&result.VPNProtocol),
			huh.NewInput().
				Title("Admin CIDR").
				Description("Source range allowed to SSH into the gateway").
				Value(&result.AdminCIDR).
				Validate(validateCIDR),
		).Title("VPN Settings"),
	).RunWithContext(ctx)
}

func runNotificationGroup(ctx context.Context, result *Result) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Webhook URL (Optional)").
				Description("Lifecycle events are posted here as JSON. Leave empty to skip.").
				Value(&result.WebhookURL),
			huh.NewInput().
				Title("Notification Email (Optional)").
				Description("Comma-separated recipients. Leave empty to skip.").
				Value(&result.EmailTo),
			huh.NewInput().
				Title("SMTP Host").
				Description("Only needed when notification email is set").
				Value(&result.EmailHost),
			huh.NewInput().
				Title("Sender Address").
				Description("Only needed when notification email is set").
				Value(&result.EmailFrom),
		).Title("Notifications"),
	).RunWithContext(ctx)
}

// BuildConfig folds wizard answers into a validated Config.
func BuildConfig(result *Result) (*config.Config, error) {
	cfg := config.Default()
	cfg.Session = result.Session
	cfg.Region = result.Region
	cfg.InstanceType = result.InstanceType
	cfg.VPN.Protocol = result.VPNProtocol
	cfg.AdminCIDR = result.AdminCIDR

	port, err := strconv.Atoi(strings.TrimSpace(result.VPNPort))
	if err != nil {
		return nil, fmt.Errorf("vpn port %q is not a number", result.VPNPort)
	}
	cfg.VPN.Port = port

	cfg.Notifications.WebhookURL = strings.TrimSpace(result.WebhookURL)
	if to := splitRecipients(result.EmailTo); len(to) > 0 {
		cfg.Notifications.Email.To = to
		cfg.Notifications.Email.Host = strings.TrimSpace(result.EmailHost)
		cfg.Notifications.Email.From = strings.TrimSpace(result.EmailFrom)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitRecipients(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func validateSession(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("session name is required")
	}
	cfg := config.Default()
	cfg.Session = s
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid session name")
	}
	return nil
}

func validatePort(s string) error {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("must be a port number between 1 and 65535")
	}
	return nil
}

func validateCIDR(s string) error {
	if _, _, err := net.ParseCIDR(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("must be a CIDR like 203.0.113.0/24")
	}
	return nil
}

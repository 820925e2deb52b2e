// Package config defines the gateway configuration file format, its
// defaults and validation, and the environment-based secret and timeout
// overrides.
//
// Secrets (VPN admin password, SMTP password) never live in the YAML
// file. They are read from the environment at load time so that config
// files stay safe to commit and share.
package config

import (
	"fmt"
	"net"
	"os"
	"regexp"
	"strings"
)

// Environment variables carrying secrets.
const (
	EnvAdminPassword = "VPNGW_ADMIN_PASSWORD"
	EnvSMTPPassword  = "VPNGW_SMTP_PASSWORD"
)

// sessionNameRegex limits session names to what every tagged cloud
// resource name can safely embed.
var sessionNameRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,30}[a-z0-9])?$`)

// Config is the top-level gateway configuration.
type Config struct {
	// Session names this gateway deployment. All cloud resources are
	// named and tagged after it.
	Session string `yaml:"session"`

	Region string `yaml:"region"`

	// Network optionally names the VPC to deploy into. Empty means the
	// region's default VPC.
	Network string `yaml:"network,omitempty"`

	Image        ImageConfig `yaml:"image"`
	InstanceType string      `yaml:"instance_type"`

	VPN VPNConfig `yaml:"vpn"`

	// AdminCIDR is the source range allowed to reach SSH on the
	// gateway. Defaults to open, which is worth narrowing.
	AdminCIDR string `yaml:"admin_cidr"`

	DNS DNSConfig `yaml:"dns,omitempty"`

	SSH SSHConfig `yaml:"ssh"`

	// StateDir holds the session state file and the private key file.
	StateDir string `yaml:"state_dir,omitempty"`

	Notifications NotificationConfig `yaml:"notifications,omitempty"`
}

// ImageConfig selects the machine image by name pattern. The newest
// matching image wins.
type ImageConfig struct {
	NameFilter string   `yaml:"name_filter"`
	Owners     []string `yaml:"owners,omitempty"`
}

// VPNConfig holds the VPN listener settings and the management account.
type VPNConfig struct {
	Port     int    `yaml:"port"`
	Protocol string `yaml:"protocol"`

	// ClientName labels the generated client profile.
	ClientName string `yaml:"client_name"`

	AdminUser string `yaml:"admin_user,omitempty"`
	// AdminPassword is populated from VPNGW_ADMIN_PASSWORD, never from
	// the file.
	AdminPassword string `yaml:"-"`
}

// DNSConfig maintains a stable hostname for the gateway in a Route 53
// hosted zone. Both fields empty means no record is managed.
type DNSConfig struct {
	HostedZoneID string `yaml:"hosted_zone_id,omitempty"`
	Hostname     string `yaml:"hostname,omitempty"`
}

// Enabled reports whether an address record should be maintained.
func (d DNSConfig) Enabled() bool {
	return d.HostedZoneID != "" && d.Hostname != ""
}

// SSHConfig holds the remote access settings for configuration.
type SSHConfig struct {
	User string `yaml:"user"`
}

// NotificationConfig wires the optional operator channels. Both empty
// means notifications are off.
type NotificationConfig struct {
	WebhookURL string      `yaml:"webhook_url,omitempty"`
	Email      EmailConfig `yaml:"email,omitempty"`
}

// EmailConfig holds the SMTP channel settings.
type EmailConfig struct {
	Host     string   `yaml:"host,omitempty"`
	Port     int      `yaml:"port,omitempty"`
	Username string   `yaml:"username,omitempty"`
	From     string   `yaml:"from,omitempty"`
	To       []string `yaml:"to,omitempty"`
	// Password is populated from VPNGW_SMTP_PASSWORD.
	Password string `yaml:"-"`
}

// Enabled reports whether the mail channel is configured.
func (e EmailConfig) Enabled() bool {
	return e.Host != "" && e.From != "" && len(e.To) > 0
}

// Default returns a Config with every optional field at its default.
func Default() *Config {
	return &Config{
		Session: "vpn",
		Region:  "us-west-2",
		Image: ImageConfig{
			NameFilter: "ubuntu/images/hvm-ssd-gp3/ubuntu-noble-24.04-amd64-server-*",
			Owners:     []string{"099720109477"}, // Canonical
		},
		InstanceType: "t3.micro",
		VPN: VPNConfig{
			Port:       1194,
			Protocol:   "udp",
			ClientName: "operator",
		},
		AdminCIDR: "0.0.0.0/0",
		SSH: SSHConfig{
			User: "ubuntu",
		},
		StateDir: ".",
	}
}

// applyDefaults fills zero-valued fields from Default.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Session == "" {
		c.Session = def.Session
	}
	if c.Region == "" {
		c.Region = def.Region
	}
	if c.Image.NameFilter == "" {
		c.Image = def.Image
	}
	if c.InstanceType == "" {
		c.InstanceType = def.InstanceType
	}
	if c.VPN.Port == 0 {
		c.VPN.Port = def.VPN.Port
	}
	if c.VPN.Protocol == "" {
		c.VPN.Protocol = def.VPN.Protocol
	}
	if c.VPN.ClientName == "" {
		c.VPN.ClientName = def.VPN.ClientName
	}
	if c.AdminCIDR == "" {
		c.AdminCIDR = def.AdminCIDR
	}
	if c.SSH.User == "" {
		c.SSH.User = def.SSH.User
	}
	if c.StateDir == "" {
		c.StateDir = def.StateDir
	}
	if c.Notifications.Email.Host != "" && c.Notifications.Email.Port == 0 {
		c.Notifications.Email.Port = 587
	}
}

// loadSecrets pulls secret values from the environment.
func (c *Config) loadSecrets() {
	if v := os.Getenv(EnvAdminPassword); v != "" {
		c.VPN.AdminPassword = v
	}
	if v := os.Getenv(EnvSMTPPassword); v != "" {
		c.Notifications.Email.Password = v
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	var errs []string

	if !sessionNameRegex.MatchString(c.Session) {
		errs = append(errs, fmt.Sprintf("session %q must be 1-32 lowercase alphanumerics or hyphens", c.Session))
	}
	if c.Region == "" {
		errs = append(errs, "region is required")
	}
	if c.VPN.Port <= 0 || c.VPN.Port > 65535 {
		errs = append(errs, fmt.Sprintf("vpn.port %d out of range", c.VPN.Port))
	}
	if c.VPN.Protocol != "udp" && c.VPN.Protocol != "tcp" {
		errs = append(errs, fmt.Sprintf("vpn.protocol must be udp or tcp, got %q", c.VPN.Protocol))
	}
	if _, _, err := net.ParseCIDR(c.AdminCIDR); err != nil {
		errs = append(errs, fmt.Sprintf("admin_cidr %q is not a valid CIDR", c.AdminCIDR))
	}
	if (c.DNS.HostedZoneID == "") != (c.DNS.Hostname == "") {
		errs = append(errs, "dns needs both hosted_zone_id and hostname")
	}
	if c.VPN.AdminUser != "" && c.VPN.AdminPassword == "" {
		errs = append(errs, fmt.Sprintf("vpn.admin_user is set but %s is empty", EnvAdminPassword))
	}
	if c.Notifications.Email.Host != "" && !c.Notifications.Email.Enabled() {
		errs = append(errs, "notifications.email needs host, from and at least one recipient")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

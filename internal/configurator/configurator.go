// Package configurator installs and verifies the VPN software on a
// launched gateway instance over SSH.
package configurator

import (
	"context"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"

	"github.com/vpngw/vpngw/internal/errdefs"
)

const installScriptURL = "https://raw.githubusercontent.com/angristan/openvpn-install/master/openvpn-install.sh"

// Runner executes commands on the remote host. Satisfied by
// platform/ssh.Session; tests substitute a fake.
type Runner interface {
	Execute(ctx context.Context, command string) (string, error)
}

// Params describes the desired VPN server configuration.
type Params struct {
	// Endpoint is the address clients connect to: the instance's public
	// IP, or its DNS name when one is maintained.
	Endpoint string

	// Port and Protocol of the VPN listener. Protocol is "udp" or "tcp".
	Port     int
	Protocol string

	// ClientName labels the generated client profile.
	ClientName string

	// AdminUser and AdminPassword protect the server's management
	// account. The password must never appear in logs.
	AdminUser     string
	AdminPassword string
}

func (p Params) validate() error {
	if p.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if p.Port <= 0 || p.Port > 65535 {
		return fmt.Errorf("invalid VPN port %d", p.Port)
	}
	if p.Protocol != "udp" && p.Protocol != "tcp" {
		return fmt.Errorf("protocol must be udp or tcp, got %q", p.Protocol)
	}
	if p.ClientName == "" {
		return fmt.Errorf("client name is required")
	}
	return nil
}

// step is one remote command with a loggable name. Commands may embed
// secrets, so only the name is ever logged.
type step struct {
	name    string
	command string
}

// Setup installs the VPN server on the remote host and returns the
// generated client profile. A failing remote command is reported as a
// ConfigurationError carrying the remote output.
func Setup(ctx context.Context, runner Runner, params Params) (string, error) {
	if err := params.validate(); err != nil {
		return "", fmt.Errorf("invalid parameters: %w", err)
	}
	log := clog.FromContext(ctx)

	protocolChoice := "1" // udp
	if params.Protocol == "tcp" {
		protocolChoice = "2"
	}

	steps := []step{
		{
			name:    "fetch installer",
			command: fmt.Sprintf("curl -fsSL -o /tmp/openvpn-install.sh %s && chmod +x /tmp/openvpn-install.sh", installScriptURL),
		},
		{
			name: "install vpn server",
			command: fmt.Sprintf(
				"sudo AUTO_INSTALL=y APPROVE_IP=y ENDPOINT=%s PORT_CHOICE=2 PORT=%d PROTOCOL_CHOICE=%s DNS=1 CLIENT=%s PASS=1 /tmp/openvpn-install.sh",
				params.Endpoint, params.Port, protocolChoice, params.ClientName,
			),
		},
	}

	if params.AdminUser != "" && params.AdminPassword != "" {
		steps = append(steps, step{
			name: "set management credentials",
			command: fmt.Sprintf("printf '%%s:%%s' %s %s | sudo chpasswd",
				shellQuote(params.AdminUser), shellQuote(params.AdminPassword)),
		})
	}

	for _, s := range steps {
		log.Info("running setup step", "step", s.name, "host", params.Endpoint)
		if output, err := runner.Execute(ctx, s.command); err != nil {
			return "", &errdefs.ConfigurationError{
				Host:   params.Endpoint,
				Output: output,
				Err:    fmt.Errorf("%s: %w", s.name, err),
			}
		}
	}

	profile, err := runner.Execute(ctx, fmt.Sprintf("sudo cat /root/%s.ovpn", params.ClientName))
	if err != nil {
		return "", &errdefs.ConfigurationError{
			Host:   params.Endpoint,
			Output: profile,
			Err:    fmt.Errorf("reading client profile: %w", err),
		}
	}
	if !strings.Contains(profile, "client") {
		return "", &errdefs.ConfigurationError{
			Host: params.Endpoint,
			Err:  fmt.Errorf("client profile looks malformed"),
		}
	}

	log.Info("vpn server configured", "host", params.Endpoint, "port", params.Port, "protocol", params.Protocol)
	return profile, nil
}

// shellQuote single-quotes a value for safe interpolation into a remote
// shell command.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

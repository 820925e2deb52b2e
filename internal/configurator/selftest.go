package configurator

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
)

const probeTimeout = 10 * time.Second

// Report is the outcome of a gateway self test. Each probe is recorded
// separately so a partial failure still tells the operator what works.
type Report struct {
	ServiceActive bool
	PortListening bool
	Reachable     bool
	Diagnostics   []string
}

// Healthy reports whether every probe passed.
func (r Report) Healthy() bool {
	return r.ServiceActive && r.PortListening && r.Reachable
}

func (r *Report) note(format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, fmt.Sprintf(format, args...))
}

// SelfTest probes a configured gateway from both sides: service state
// and listener via SSH from the inside, host reachability from the
// outside.
func SelfTest(ctx context.Context, runner Runner, host string, port int, protocol string) Report {
	log := clog.FromContext(ctx)
	var report Report

	output, err := runner.Execute(ctx, "systemctl is-active openvpn-server@server")
	switch {
	case err != nil:
		report.note("service check failed: %v", err)
	case strings.TrimSpace(output) != "active":
		report.note("vpn service is %q, expected active", strings.TrimSpace(output))
	default:
		report.ServiceActive = true
	}

	listenFlag := "-lun"
	if protocol == "tcp" {
		listenFlag = "-ltn"
	}
	output, err = runner.Execute(ctx, fmt.Sprintf("ss %s 2>/dev/null | grep -c ':%d '", listenFlag, port))
	switch {
	case err != nil:
		report.note("listener check failed: %v", err)
	case strings.TrimSpace(output) == "0":
		report.note("no %s listener on port %d", protocol, port)
	default:
		report.PortListening = true
	}

	if err := probeHost(ctx, host, port, protocol); err != nil {
		report.note("reachability probe failed: %v", err)
	} else {
		report.Reachable = true
	}

	log.Info("self test complete",
		"host", host,
		"service", report.ServiceActive,
		"listener", report.PortListening,
		"reachable", report.Reachable,
	)
	return report
}

// probeHost checks the gateway answers from the outside. A UDP listener
// gives nothing to handshake with, so in that case the probe falls back
// to the admin SSH port.
func probeHost(ctx context.Context, host string, port int, protocol string) error {
	probePort := 22
	if protocol == "tcp" {
		probePort = port
	}
	dialer := net.Dialer{Timeout: probeTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(probePort)))
	if err != nil {
		return err
	}
	return conn.Close()
}

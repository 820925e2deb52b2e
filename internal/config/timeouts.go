package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds the bounds on every long-running lifecycle phase.
// These values can be customized via environment variables.
type Timeouts struct {
	InstanceRunning time.Duration // waiting for the instance to reach running with a public address
	SSHReady        time.Duration // waiting for SSH to accept connections after boot
	Configure       time.Duration // remote VPN installation
	Delete          time.Duration // full teardown of all session resources
	PollInterval    time.Duration // delay between instance state polls

	RetryMaxAttempts int           // attempts per retried cloud or SSH operation
	RetryDelay       time.Duration // delay between attempts
}

// LoadTimeouts loads timeout configuration from environment variables.
// If a variable is not set or invalid, the default is used.
//
// Environment variables:
//   - VPNGW_TIMEOUT_INSTANCE (default: 5m)
//   - VPNGW_TIMEOUT_SSH (default: 3m)
//   - VPNGW_TIMEOUT_CONFIGURE (default: 10m)
//   - VPNGW_TIMEOUT_DELETE (default: 5m)
//   - VPNGW_POLL_INTERVAL (default: 5s)
//   - VPNGW_RETRY_MAX_ATTEMPTS (default: 5)
//   - VPNGW_RETRY_DELAY (default: 5s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		InstanceRunning:  parseDuration("VPNGW_TIMEOUT_INSTANCE", 5*time.Minute),
		SSHReady:         parseDuration("VPNGW_TIMEOUT_SSH", 3*time.Minute),
		Configure:        parseDuration("VPNGW_TIMEOUT_CONFIGURE", 10*time.Minute),
		Delete:           parseDuration("VPNGW_TIMEOUT_DELETE", 5*time.Minute),
		PollInterval:     parseDuration("VPNGW_POLL_INTERVAL", 5*time.Second),
		RetryMaxAttempts: parseInt("VPNGW_RETRY_MAX_ATTEMPTS", 5),
		RetryDelay:       parseDuration("VPNGW_RETRY_DELAY", 5*time.Second),
	}
}

func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

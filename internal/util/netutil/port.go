// Package netutil provides small network probing helpers.
package netutil

import (
	"context"
	"fmt"
	"net"
	"time"
)

// WaitForPort waits for a TCP port to be open, probing at the given
// interval until the timeout expires. Used to detect when a freshly
// booted instance starts accepting SSH connections.
func WaitForPort(ctx context.Context, ip string, port int, interval, timeout time.Duration) error {
	address := net.JoinHostPort(ip, fmt.Sprintf("%d", port))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		conn, err := net.DialTimeout("tcp", address, 2*time.Second)
		if err == nil {
			_ = conn.Close()
			return nil
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return fmt.Errorf("timeout waiting for %s", address)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

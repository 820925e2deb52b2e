package handlers

import (
	"context"
	"fmt"
)

// Test handles the test command: probe the gateway and report per
// check. A failing probe makes the command exit non-zero.
func Test(ctx context.Context, configPath string) error {
	controller, cfg, err := buildController(ctx, configPath)
	if err != nil {
		return err
	}

	report, err := controller.Test(ctx)
	if err != nil {
		return fmt.Errorf("testing gateway: %w", err)
	}

	fmt.Printf("Gateway %q:\n", cfg.Session)
	fmt.Printf("  VPN service:    %s\n", passFail(report.ServiceActive))
	fmt.Printf("  VPN listener:   %s\n", passFail(report.PortListening))
	fmt.Printf("  Reachability:   %s\n", passFail(report.Reachable))

	if !report.Healthy() {
		for _, diag := range report.Diagnostics {
			fmt.Printf("  ! %s\n", diag)
		}
		return fmt.Errorf("gateway test failed")
	}
	return nil
}

func passFail(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAILED"
}

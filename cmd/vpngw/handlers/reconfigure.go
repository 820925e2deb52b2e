package handlers

import (
	"context"
	"fmt"
)

// Reconfigure handles the reconfigure command: re-apply the VPN
// settings from the config file to the existing instance.
func Reconfigure(ctx context.Context, configPath string) error {
	controller, _, err := buildController(ctx, configPath)
	if err != nil {
		return err
	}

	session, err := controller.Reconfigure(ctx)
	if err != nil {
		return fmt.Errorf("reconfiguring gateway: %w", err)
	}

	fmt.Printf("Gateway %q reconfigured.\n", session.Name)
	fmt.Printf("  Endpoint:  %s:%d/%s\n", session.PublicIP, session.Port, session.Protocol)
	fmt.Printf("  Profile:   %s\n", session.ProfileFile)
	return nil
}

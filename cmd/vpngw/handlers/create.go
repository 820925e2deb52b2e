package handlers

import (
	"context"
	"fmt"
)

// Create handles the create command: it provisions the full gateway and
// prints the connection details on success.
func Create(ctx context.Context, configPath string) error {
	controller, cfg, err := buildController(ctx, configPath)
	if err != nil {
		return err
	}

	session, err := controller.Create(ctx)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	fmt.Printf("Gateway %q is active.\n\n", session.Name)
	fmt.Printf("  Region:    %s\n", session.Region)
	fmt.Printf("  Instance:  %s\n", session.InstanceID)
	fmt.Printf("  Endpoint:  %s:%d/%s\n", session.PublicIP, session.Port, session.Protocol)
	fmt.Printf("  Profile:   %s\n", session.ProfileFile)
	fmt.Printf("  SSH:       ssh -i %s %s@%s\n", session.KeyFile, cfg.SSH.User, session.PublicIP)
	return nil
}

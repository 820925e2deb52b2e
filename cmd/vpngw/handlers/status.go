package handlers

import (
	"context"
	"fmt"

	"github.com/vpngw/vpngw/internal/errdefs"
	"github.com/vpngw/vpngw/internal/lifecycle"
)

// Status handles the status command. It reads only local state, so no
// cloud client is constructed.
func Status(_ context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	session, err := lifecycle.NewStore(cfg.StateDir).Load(cfg.Session)
	if err != nil {
		if errdefs.IsNotFound(err) {
			fmt.Printf("No gateway session %q. Run create first.\n", cfg.Session)
			return nil
		}
		return err
	}

	fmt.Printf("Gateway %q (%s)\n", session.Name, session.Region)
	fmt.Printf("  State:     %s\n", session.State)
	fmt.Printf("  Created:   %s\n", session.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if session.InstanceID != "" {
		fmt.Printf("  Instance:  %s\n", session.InstanceID)
	}
	if session.PublicIP != "" {
		fmt.Printf("  Endpoint:  %s:%d/%s\n", session.PublicIP, session.Port, session.Protocol)
	}
	if session.ProfileFile != "" {
		fmt.Printf("  Profile:   %s\n", session.ProfileFile)
	}
	return nil
}

package handlers

import (
	"context"
	"fmt"
)

// Delete handles the delete command: full teardown of the session.
func Delete(ctx context.Context, configPath string) error {
	controller, cfg, err := buildController(ctx, configPath)
	if err != nil {
		return err
	}

	if err := controller.Delete(ctx); err != nil {
		return fmt.Errorf("deleting gateway: %w", err)
	}

	fmt.Printf("Gateway %q deleted.\n", cfg.Session)
	return nil
}

package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/vpngw/vpngw/internal/config"
	"github.com/vpngw/vpngw/internal/config/wizard"
)

// Factory function variables for init - can be replaced in tests.
var (
	runWizard  = wizard.Run
	isTerminal = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
	}
)

// Init handles the init command. Interactive in a terminal, defaults
// otherwise.
func Init(ctx context.Context, outputPath string, useDefaults bool) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it or choose another path with -o", outputPath)
	}

	var cfg *config.Config
	if useDefaults || !isTerminal() {
		cfg = config.Default()
	} else {
		var err error
		cfg, err = runWizard(ctx)
		if err != nil {
			return fmt.Errorf("configuration wizard: %w", err)
		}
	}

	if err := config.Write(cfg, outputPath); err != nil {
		return err
	}

	fmt.Printf("Wrote %s.\n\n", outputPath)
	fmt.Printf("Next steps:\n")
	fmt.Printf("  1. Export AWS credentials (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY)\n")
	fmt.Printf("  2. vpngw create -c %s\n", outputPath)
	return nil
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/vpngw/vpngw/cmd/vpngw/handlers"
)

// Test returns the test command.
func Test() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Probe an existing gateway end to end",
		Long: `Test verifies a running gateway without changing anything:

  - The instance is running in the cloud
  - The VPN service is active on the instance
  - The VPN listener is bound to its port
  - The host answers a probe from the outside

The command exits non-zero if any probe fails, with diagnostics for
each failing probe.

Example:
  vpngw test -c vpngw.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Test(cmd.Context(), configPath)
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

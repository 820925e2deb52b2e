package commands

import (
	"github.com/spf13/cobra"

	"github.com/vpngw/vpngw/cmd/vpngw/handlers"
)

// Reconfigure returns the reconfigure command.
func Reconfigure() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "reconfigure",
		Short: "Re-apply VPN settings to the existing gateway",
		Long: `Reconfigure re-runs the VPN installation on the existing instance
with the current configuration file. Use it after changing the VPN
port or protocol. Cloud resources stay as they are; only the software
on the instance changes, and the client profile is rewritten.

Note that the security group keeps the ingress rules from creation,
so moving the listener to a port that was not opened at create time
requires a delete and create instead.

Example:
  vpngw reconfigure -c vpngw.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Reconfigure(cmd.Context(), configPath)
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

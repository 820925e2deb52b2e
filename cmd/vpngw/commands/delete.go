package commands

import (
	"github.com/spf13/cobra"

	"github.com/vpngw/vpngw/cmd/vpngw/handlers"
)

// Delete returns the delete command.
func Delete() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Tear down the VPN gateway and all associated resources",
		Long: `Delete removes every resource belonging to the gateway session:

  - The instance (terminated and waited for)
  - The security group
  - The imported key pair
  - The local private key, client profile, and session files

Deleting is idempotent: resources that are already gone are skipped,
and deleting a gateway that does not exist succeeds without doing
anything.

Example:
  vpngw delete -c vpngw.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Delete(cmd.Context(), configPath)
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/vpngw/vpngw/cmd/vpngw/handlers"
)

// Create returns the create command.
func Create() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Provision a new VPN gateway",
		Long: `Create provisions a complete VPN gateway on AWS.

The following resources are created, in order:
  - An SSH key pair (generated locally, public half imported)
  - A security group opening the VPN port and admin SSH
  - An instance running the latest matching machine image

The VPN server is then installed over SSH and verified end to end.
If any step fails, everything created so far is released again.

On success the client profile is written next to the configuration
file, ready to be imported into a VPN client.

Example:
  vpngw create -c vpngw.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Create(cmd.Context(), configPath)
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

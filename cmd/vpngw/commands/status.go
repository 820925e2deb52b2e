package commands

import (
	"github.com/spf13/cobra"

	"github.com/vpngw/vpngw/cmd/vpngw/handlers"
)

// Status returns the status command.
func Status() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the recorded state of the gateway session",
		Long: `Status prints the locally recorded session: lifecycle state, the
cloud resource identifiers, and the connection endpoint. It reads
only the local session file and makes no cloud calls; use test to
verify the gateway is actually up.

Example:
  vpngw status -c vpngw.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), configPath)
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

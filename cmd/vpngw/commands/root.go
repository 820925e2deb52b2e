// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing and flag binding. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the vpngw CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vpngw",
		Short: "Provision and manage a personal VPN gateway on AWS",
	}

	cmd.AddCommand(Init())
	cmd.AddCommand(Create())
	cmd.AddCommand(Test())
	cmd.AddCommand(Reconfigure())
	cmd.AddCommand(Delete())
	cmd.AddCommand(Status())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

// configFlag binds the shared --config flag.
func configFlag(cmd *cobra.Command, configPath *string) {
	cmd.Flags().StringVarP(configPath, "config", "c", "vpngw.yaml", "Path to the gateway configuration file")
}

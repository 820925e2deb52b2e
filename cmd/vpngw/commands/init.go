package commands

import (
	"github.com/spf13/cobra"

	"github.com/vpngw/vpngw/cmd/vpngw/handlers"
)

// Init returns the init command.
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a gateway configuration file",
		Long: `Init writes a new configuration file.

In a terminal, an interactive wizard walks through the configuration
questions. Outside a terminal (or with --defaults), a file with
default values is written instead.

Example:
  vpngw init
  vpngw init -o corp.yaml --defaults`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			useDefaults, _ := cmd.Flags().GetBool("defaults")
			return handlers.Init(cmd.Context(), outputPath, useDefaults)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "vpngw.yaml", "Path for the new configuration file")
	cmd.Flags().Bool("defaults", false, "Write defaults without asking questions")
	return cmd
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/dyluth/distforge/internal/printer"
	"github.com/dyluth/distforge/internal/scaffold"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter distforge.yml in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := scaffold.Initialize(initForce); err != nil {
			return printer.Error("Initialization failed", err.Error(), nil)
		}
		printer.Success("created distforge.yml\n")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Replace an existing distforge.yml")
	rootCmd.AddCommand(initCmd)
}

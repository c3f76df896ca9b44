package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dyluth/distforge/internal/engine"
	"github.com/dyluth/distforge/internal/printer"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List registered targets and their freshness",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		p, _, err := loadProject(ctx)
		if err != nil {
			return err
		}

		for _, name := range p.TargetNames() {
			target, _ := p.Registry.Lookup(name)
			if target.Phony {
				printer.Info("%-40s phony\n", name)
				continue
			}

			nodes, err := p.Resolve(name)
			if err != nil {
				return err
			}
			engine.Plan(nodes)
			printer.Info("%-40s %s\n", name, nodes[len(nodes)-1].State)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}

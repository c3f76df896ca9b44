package commands

import (
	"github.com/spf13/cobra"
)

// buildTargets are the user-facing targets that map straight onto graph
// entries. Each becomes its own subcommand.
var buildTargets = []struct {
	name  string
	short string
}{
	{"install", "Install the project (honours --dest-root)"},
	{"develop", "Install the project in development mode"},
	{"test", "Run the project test suite"},
	{"doc", "Build the documentation"},
	{"source", "Build both source archives (tar.gz and zip)"},
	{"source-tar", "Build the source tar.gz archive"},
	{"source-zip", "Build the source zip archive"},
	{"egg", "Build the egg package"},
	{"rpm", "Build the source rpm package"},
	{"deb", "Build the deb package"},
	{"msi", "Build the msi installer on the remote host"},
	{"dist", "Build every distribution format"},
	{"clean", "Remove all build output"},
}

func init() {
	for _, t := range buildTargets {
		target := t.name
		rootCmd.AddCommand(&cobra.Command{
			Use:   target,
			Short: t.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTarget(target)
			},
		})
	}
}

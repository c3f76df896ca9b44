package commands

import (
	"github.com/spf13/cobra"
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Cut a release: clean, check the working tree, update the changelog, commit, tag",
	Long: `Cut a release for the resolved version.

Runs the clean target, then verifies the working tree has no uncommitted
changes (the release aborts before touching anything if it does), updates
the changelog entry for the version, commits that one file, and creates a
signed tag named v<version>.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTarget("release")
	},
}

var publishCmd = &cobra.Command{
	Use:     "publish",
	Aliases: []string{"release-publish"},
	Short:   "Rebuild every distribution format and push each to its destination",
	Long: `Rebuild every distribution format, then push each artifact to its
destination: the package index, the archive PPA, and the generic file host
(with md5 and sha256 checksum side-files and a latest-version pointer).

Steps run in order and are not retried or rolled back; after a partial
failure, re-run publish to redo the remaining steps.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTarget("publish")
	},
}

func init() {
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(publishCmd)
}

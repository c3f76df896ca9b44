package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// Global flags shared by every target command
var (
	flagConfig      string
	flagJobs        int
	flagInterpreter string
	flagDestRoot    string
	flagRemoteHost  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "distforge",
	Short: "Distforge - dependency-driven build and release orchestrator",
	Long: `Distforge builds a project into its distribution formats (source
archives, egg, rpm, deb, and a remotely built msi) and publishes them.

Targets form a dependency graph with staleness detection: requesting a
target rebuilds only what is out of date, and independent branches build
in parallel.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: distforge.yml if present)")
	rootCmd.PersistentFlags().IntVar(&flagJobs, "jobs", 0, "Parallel worker bound (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagInterpreter, "interpreter", "", "Interpreter for the setup script (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDestRoot, "dest-root", "", "Destination root override for install")
	rootCmd.PersistentFlags().StringVar(&flagRemoteHost, "remote-host", "", "Remote build host for the msi target (overrides config)")
}

// Package cmd provides the CLI commands for billingengine.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags.
var Version = "0.1.0"

var (
	engineConfigFile string
	verbose          bool
)

var rootCmd = &cobra.Command{
	Use:   "billingengine",
	Short: "Compute fulfillment billing reports",
	Long: `billingengine evaluates each customer's rule-gated services against
their fulfillment orders and produces an auditable billing report.

Database, cache and telemetry settings are read from the environment
(DATABASE_*, REDIS_*, OTLP_*). Engine settings come from engine.yml.

Examples:
  billingengine report --customer ACME --from 2024-01-01 --to 2024-01-31
  billingengine report --customer 1790 --from 2024-01-01 --to 2024-01-31 --format table
  billingengine check-config --customer ACME`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&engineConfigFile, "engine-config", "", "engine config file (default searches ./engine.yml and /etc/fulfillment-billing)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "billingengine version %s\n", Version)
	},
}

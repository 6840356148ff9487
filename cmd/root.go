// Package cmd is the sandsim command line. Every subcommand loads the
// same configuration file; run reports go to stdout as JSON, logs go to
// stderr.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "sandsim",
	Short: "Multi-tenant RPC dispatch simulator",
	Long: `sandsim serves, simulates and load-tests a single-core request
dispatch loop under pluggable scheduling policies.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (defaults apply when omitted)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

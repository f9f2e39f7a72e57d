// Package cmd provides the CLI commands for the ABAC decision engine.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abac-gate/engine/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "abac-engine",
	Short: "ABAC decision engine",
	Long: `abac-engine is an Attribute-Based Access Control decision engine.

Given (subject, object, action, environment) it returns permit/deny by
evaluating administrator-authored rules against attribute stores, with a
deny-by-default trust model and tamper-evident decision logging.

Quick start:
  1. Create a config file: abac-gate.yaml
  2. Run: abac-engine serve

Configuration:
  Config is loaded from abac-gate.yaml in the current directory,
  $HOME/.abac-gate/, or /etc/abac-gate/.

  Environment variables can override config values with the ABAC_GATE_
  prefix. Example: ABAC_GATE_SERVER_HTTP_ADDR=:9090

Commands:
  serve     Start the decision API and seed bootstrap state
  version   Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./abac-gate.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}

// Package main provides the heartbound command line: content validation,
// seeded simulations and an interactive play loop.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var configPath string
	root := &cobra.Command{
		Use:           "heartbound",
		Short:         "Dating-sim progression and encounter engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file (defaults and HEARTBOUND_* environment when empty)")
	root.AddCommand(validateCmd(&configPath))
	root.AddCommand(simulateCmd(&configPath))
	root.AddCommand(playCmd(&configPath))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

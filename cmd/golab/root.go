package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "golab",
	Short: "golab runs laboratory sweeps and manages their recorded " +
		"results.",
	Long: `golab runs laboratory sweeps and manages their recorded ` +
		`results. Currently, it supports running a demonstration sweep ` +
		`against a simulated source and listing the runs saved in a ` +
		`recording database.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

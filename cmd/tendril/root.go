package main

import (
	"fmt"
	"os"

	"github.com/aretw0/tendril/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tendril",
	Short: "Tendril is a rule-driven controller for interactive installations",
	Long: `Tendril evaluates ordered event rules against counters, timers, GPIO pins,
analog inputs and media players, and keeps a client application in sync
through files, Redis or HTTP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to tendril.yaml (defaults plus TENDRIL_* env when empty)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

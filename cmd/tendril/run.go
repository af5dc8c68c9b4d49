package main

import (
	"context"
	"fmt"

	"github.com/aretw0/tendril/internal/cli"
	"github.com/aretw0/tendril/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the controller loop",
	Long: `Loads the persisted definition and evaluates every event on each tick,
polling client updates and publishing snapshots and the live feed on their
own cadences, until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("http"); addr != "" {
			cfg.HTTP.Addr = addr
		}
		debug, _ := cmd.Flags().GetBool("debug")
		quiet, _ := cmd.Flags().GetBool("quiet")

		logger := cli.CreateLogger(cfg.Log, debug)
		if !quiet {
			tui.PrintBanner(cmd.OutOrStdout())
		}

		app, err := cli.Build(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to build controller: %w", err)
		}
		defer app.Close()

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		logger.Info("Controller starting",
			"store", cfg.Store.Backend,
			"hardware", cfg.Hardware,
			"http", cfg.HTTP.Addr)
		err = app.Run(ctx)
		if sig := ctx.Signal(); sig != nil {
			logger.Info("Controller stopped", "signal", sig.String())
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("http", "", "Serve the status API on this address (overrides http.addr)")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}

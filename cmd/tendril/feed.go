package main

import (
	"os"
	"time"

	"github.com/aretw0/tendril/internal/cli"
	"github.com/aretw0/tendril/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Print the live feed of a running controller",
	Long: `Reads the live feed from the configured backend (or from the status API
with --url) and prints it as a table. With --watch it refreshes until
interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		url, _ := cmd.Flags().GetString("url")
		watch, _ := cmd.Flags().GetDuration("watch")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		out := cmd.OutOrStdout()
		for {
			feed, err := cli.ReadFeed(ctx, cfg, url)
			if err != nil {
				return err
			}
			if watch > 0 {
				// Clear screen and home the cursor between refreshes
				_, _ = out.Write([]byte("\033[H\033[2J"))
			}
			tui.RenderFeed(out, feed, tui.TerminalWidth(os.Stdout))

			if watch <= 0 {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(watch):
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(feedCmd)
	feedCmd.Flags().String("url", "", "Status API base URL, e.g. http://localhost:8080")
	feedCmd.Flags().Duration("watch", 0, "Refresh interval; 0 prints once")
}

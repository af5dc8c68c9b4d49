package main

import (
	"fmt"

	"github.com/aretw0/tendril/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a definition for consistency",
	Long: `Builds every component and resolves every event of a definition file
(JSON or YAML) against simulated drivers, and reports unknown kinds,
unresolved labels, unsupported methods and bad literals.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.Validate(args[0]); err != nil {
			return fmt.Errorf("validation failed:\n%w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Definition is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/aretw0/tendril/internal/cli"
	"github.com/aretw0/tendril/internal/presentation/graph"
	"github.com/aretw0/tendril/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Summarise a definition",
	Long:  `Renders the components and events of a definition file as formatted markdown.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := cli.LoadDefinitionFile(args[0])
		if err != nil {
			return err
		}

		if mermaid, _ := cmd.Flags().GetBool("mermaid"); mermaid {
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(def, nil))
			return nil
		}

		md := tui.Describe(def)
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}

		render, err := tui.NewRenderer(tui.TerminalWidth(os.Stdout))
		if err != nil {
			return err
		}
		out, err := render(md)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "Print markdown without rendering")
	describeCmd.Flags().Bool("mermaid", false, "Print only the Mermaid graph")
}

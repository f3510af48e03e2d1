package main

import (
	"os"

	"github.com/aretw0/seqflow/internal/cli"
	"github.com/aretw0/seqflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a diagram and summarize what was recognized",
	Long: `Parses diagram text and prints the entities, connections and start points
it found, plus the lines that were skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		raw, _ := cmd.Flags().GetBool("raw")

		return withApp(cmd, false, func(app *cli.App) error {
			return app.Report(cmd.Context(), cli.ReportOptions{
				Input: inputFromFlags(cmd, args),
				JSON:  jsonMode,
				Raw:   raw,
				Width: tui.Width(os.Stdout),
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	addInputFlags(parseCmd)
	parseCmd.Flags().Bool("json", false, "Print the parsed diagram as JSON")
	parseCmd.Flags().Bool("raw", false, "Print plain markdown")
}

package main

import (
	"github.com/aretw0/seqflow/internal/cli"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export a diagram as JSON, YAML, msgpack or Mermaid",
	Long: `Writes the diagram to stdout.

Formats:
- json, yaml, msgpack: the diagram model, re-importable with 'diagrams import'
- mermaid: a Mermaid sequenceDiagram
- flowchart: the flow graph as a Mermaid flowchart (--from/--to highlight a path)`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.ExportOptions{Input: inputFromFlags(cmd, args)}
		opts.Format, _ = cmd.Flags().GetString("format")
		opts.From, _ = cmd.Flags().GetString("from")
		opts.To, _ = cmd.Flags().GetString("to")

		return withApp(cmd, false, func(app *cli.App) error {
			return app.Export(cmd.Context(), cmd.OutOrStdout(), opts)
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addInputFlags(exportCmd)
	exportCmd.Flags().StringP("format", "o", "json", "Output format: json, yaml, msgpack, mermaid, flowchart")
	exportCmd.Flags().String("from", "", "Highlight the path from this entity (flowchart)")
	exportCmd.Flags().String("to", "", "Highlight the path to this entity (flowchart)")
}

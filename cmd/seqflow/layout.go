package main

import (
	"os"

	"github.com/aretw0/seqflow/internal/cli"
	"github.com/aretw0/seqflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [file]",
	Short: "Lay a diagram out on a canvas and print it as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		width, _ := cmd.Flags().GetFloat64("width")
		height, _ := cmd.Flags().GetFloat64("height")
		fit, _ := cmd.Flags().GetBool("fit")

		return withApp(cmd, false, func(app *cli.App) error {
			if fit {
				width, height, _ = tui.CanvasSize(os.Stdout, app.Config.Canvas.Width, app.Config.Canvas.Height)
			}
			if width > 0 && height > 0 {
				app.Config.Canvas.Width, app.Config.Canvas.Height = width, height
			}
			return app.Export(cmd.Context(), cmd.OutOrStdout(), cli.ExportOptions{
				Input:  inputFromFlags(cmd, args),
				Format: "json",
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(layoutCmd)
	addInputFlags(layoutCmd)
	layoutCmd.Flags().Float64("width", 0, "Canvas width (default from config)")
	layoutCmd.Flags().Float64("height", 0, "Canvas height (default from config)")
	layoutCmd.Flags().Bool("fit", false, "Size the canvas after the terminal")
}

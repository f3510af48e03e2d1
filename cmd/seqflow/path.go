package main

import (
	"github.com/aretw0/seqflow/internal/cli"
	"github.com/spf13/cobra"
)

var pathCmd = &cobra.Command{
	Use:   "path FROM TO [file]",
	Short: "Print the shortest message path between two entities",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(app *cli.App) error {
			_, err := app.Path(cmd.Context(), inputFromFlags(cmd, args[2:]), args[0], args[1])
			return err
		})
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview ID [file]",
	Short: "List every entity reachable from an entity",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(app *cli.App) error {
			_, err := app.Preview(cmd.Context(), inputFromFlags(cmd, args[1:]), args[0])
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(pathCmd, previewCmd)
	addInputFlags(pathCmd)
	addInputFlags(previewCmd)
}

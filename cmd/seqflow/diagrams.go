package main

import (
	"fmt"

	"github.com/aretw0/seqflow/internal/cli"
	"github.com/spf13/cobra"
)

var diagramsCmd = &cobra.Command{
	Use:   "diagrams",
	Short: "Manage stored diagrams",
	Long:  `Stored diagrams live in the configured store (memory, file or redis).`,
}

var diagramsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored diagram ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(app *cli.App) error {
			ids, err := app.Workspace.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		})
	},
}

var diagramsSaveCmd = &cobra.Command{
	Use:   "save ID [file]",
	Short: "Parse a diagram and store it under ID",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(app *cli.App) error {
			return app.Save(cmd.Context(), args[0], inputFromFlags(cmd, args[1:]))
		})
	},
}

var diagramsImportCmd = &cobra.Command{
	Use:   "import ID FILE",
	Short: "Import a JSON, YAML or msgpack diagram under ID",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(app *cli.App) error {
			return app.Import(cmd.Context(), args[0], args[1])
		})
	},
}

var diagramsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a stored diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(app *cli.App) error {
			return app.Workspace.Delete(cmd.Context(), args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(diagramsCmd)
	diagramsCmd.AddCommand(diagramsListCmd, diagramsSaveCmd, diagramsImportCmd, diagramsDeleteCmd)
	addInputFlags(diagramsSaveCmd)
}

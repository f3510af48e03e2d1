package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/seqflow/internal/cli"
	"github.com/spf13/cobra"
)

var errNoLibrary = errors.New("no library configured (set library in seqflow.yaml or SEQFLOW_LIBRARY)")

var libraryCmd = &cobra.Command{
	Use:   "library [id]",
	Short: "List the library documents or print one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(app *cli.App) error {
			if app.Library == nil {
				return errNoLibrary
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				doc, err := app.Library.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, doc.Source)
				return nil
			}

			docs, err := app.Library.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tTAGS")
			for _, d := range docs {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", d.ID, d.Title, strings.Join(d.Tags, ","))
			}
			return tw.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(libraryCmd)
}

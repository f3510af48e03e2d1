package main

import (
	"fmt"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/samples"
	"github.com/spf13/cobra"
)

var samplesCmd = &cobra.Command{
	Use:   "samples [name]",
	Short: "List the bundled samples or print one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, name := range samples.Names() {
				marker := " "
				if name == samples.Default {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, name)
			}
			return nil
		}

		text, ok := samples.Get(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownSample, args[0])
		}
		fmt.Fprint(out, text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(samplesCmd)
}

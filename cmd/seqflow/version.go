package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/seqflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of seqflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "seqflow version %s\n", strings.TrimSpace(seqflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

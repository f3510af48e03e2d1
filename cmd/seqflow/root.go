package main

import (
	"fmt"
	"os"

	"github.com/aretw0/seqflow/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "seqflow",
	Short: "seqflow animates PlantUML-style sequence diagrams",
	Long: `seqflow parses sequence diagram text, builds the message flow graph and
animates it: depth-first flows, shortest paths and reachability previews.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default seqflow.yaml when present)")
	rootCmd.PersistentFlags().String("env-file", "", "Dotenv file (default .env when present)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log debug output to stderr")
}

// newApp builds the App from the persistent flags. server selects the
// configured log level instead of the quiet CLI logger.
func newApp(cmd *cobra.Command, server bool) (*cli.App, error) {
	configFile, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")
	debug, _ := cmd.Flags().GetBool("debug")

	return cli.NewApp(cli.Options{
		ConfigFile: configFile,
		EnvFile:    envFile,
		Debug:      debug,
		Server:     server,
		Out:        cmd.OutOrStdout(),
	})
}

// addInputFlags registers the diagram selection flags shared by most commands.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Diagram text file ('-' for stdin)")
	cmd.Flags().StringP("sample", "s", "", "Bundled sample name")
	cmd.Flags().String("document", "", "Library document id")
	cmd.Flags().String("diagram", "", "Stored diagram id")
}

// inputFromFlags reads the input flags. A positional argument is taken as
// the file when --file is not set.
func inputFromFlags(cmd *cobra.Command, args []string) cli.Input {
	in := cli.Input{Stdin: cmd.InOrStdin()}
	in.File, _ = cmd.Flags().GetString("file")
	in.Sample, _ = cmd.Flags().GetString("sample")
	in.Document, _ = cmd.Flags().GetString("document")
	in.Diagram, _ = cmd.Flags().GetString("diagram")
	if in.File == "" && len(args) > 0 {
		in.File = args[0]
	}
	return in
}

// withApp runs fn with an App and reports errors with their advisory.
func withApp(cmd *cobra.Command, server bool, fn func(app *cli.App) error) error {
	app, err := newApp(cmd, server)
	if err != nil {
		return err
	}
	defer app.Close()
	return cli.HandleExecutionError(fn(app))
}

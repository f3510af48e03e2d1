package main

import (
	"context"

	"github.com/aretw0/seqflow/internal/cli"
	"github.com/spf13/cobra"
)

var animateCmd = &cobra.Command{
	Use:   "animate [file]",
	Short: "Animate a diagram in the terminal",
	Long: `Loads a diagram and prints the animation trace: entities light up as the
flow reaches them. Without --start every flow is animated in turn.
Ctrl+C stops the animation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.AnimateOptions{Input: inputFromFlags(cmd, args)}
		opts.Start, _ = cmd.Flags().GetString("start")
		opts.From, _ = cmd.Flags().GetString("from")
		opts.To, _ = cmd.Flags().GetString("to")
		opts.Speed, _ = cmd.Flags().GetFloat64("speed")
		opts.Verbose, _ = cmd.Flags().GetBool("verbose")
		opts.Watch, _ = cmd.Flags().GetBool("watch")
		quiet, _ := cmd.Flags().GetBool("quiet")
		opts.Banner = !quiet

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		err := withApp(cmd, false, func(app *cli.App) error {
			return app.Animate(sigCtx, opts)
		})
		if sig := sigCtx.Signal(); sig != nil {
			cmd.PrintErrf("received %s\n", sig)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(animateCmd)
	addInputFlags(animateCmd)
	animateCmd.Flags().String("start", "", "Animate only the flow from this entity")
	animateCmd.Flags().String("from", "", "Animate the shortest path from this entity (with --to)")
	animateCmd.Flags().String("to", "", "Target entity of the path (with --from)")
	animateCmd.Flags().Float64("speed", 0, "Speed factor, 0.1 to 5 (default from config)")
	animateCmd.Flags().BoolP("verbose", "v", false, "Also print stroke frames and ripples")
	animateCmd.Flags().BoolP("watch", "w", false, "Replay when the library document changes")
	animateCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}

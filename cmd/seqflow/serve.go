package main

import (
	"context"
	"fmt"

	"github.com/aretw0/seqflow/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the parse, storage and live-canvas API over HTTP, with server-sent
events on /events, Prometheus metrics on /metrics and API docs on /swagger.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return withApp(cmd, true, func(app *cli.App) error {
			addr := app.Config.Addr()
			if cmd.Flags().Changed("port") {
				addr = fmt.Sprintf(":%d", port)
			}
			return app.Serve(sigCtx, addr)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (default from config)")
}

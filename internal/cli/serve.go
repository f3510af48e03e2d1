package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	seqhttp "github.com/aretw0/seqflow/pkg/adapters/http"
	"github.com/aretw0/seqflow/pkg/adapters/mcp"
	"github.com/aretw0/seqflow/pkg/samples"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds the graceful shutdown of the servers.
const ShutdownTimeout = 5 * time.Second

// NewHandler builds the HTTP handler with the default sample preloaded on
// the canvas.
func (a *App) NewHandler(ctx context.Context) (http.Handler, error) {
	streams := seqhttp.NewStreamManager(a.Logger)
	eng := a.NewEngine(streams.Hooks())

	text, _ := samples.Get(samples.Default)
	if _, err := eng.Load(ctx, text); err != nil {
		return nil, fmt.Errorf("failed to preload sample: %w", err)
	}

	opts := []seqhttp.Option{
		seqhttp.WithStreams(streams),
		seqhttp.WithWorkspace(a.Workspace),
		seqhttp.WithMetrics(a.Registry),
		seqhttp.WithCanvas(a.Config.Canvas.Width, a.Config.Canvas.Height),
		seqhttp.WithLogger(a.Logger),
	}
	if a.Library != nil {
		opts = append(opts, seqhttp.WithLibrary(a.Library))
	}
	return seqhttp.NewHandler(eng, opts...), nil
}

// Serve runs the HTTP API on addr until ctx is cancelled.
func (a *App) Serve(ctx context.Context, addr string) error {
	handler, err := a.NewHandler(ctx)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("http server listening", "address", addr, "store", a.Config.Store.Backend)
		printSystemMessage(a.Out, "Serving on %s (docs at /swagger).", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("graceful shutdown failed", "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		a.Logger.Info("http server stopped")
		return nil
	})
	return g.Wait()
}

// ServeMCP runs the MCP server over stdio or SSE.
func (a *App) ServeMCP(ctx context.Context, transport string, port int) error {
	opts := []mcp.Option{mcp.WithLogger(a.Logger)}
	if a.Library != nil {
		opts = append(opts, mcp.WithLibrary(a.Library))
	}
	srv := mcp.NewServer(a.NewEngine(), opts...)

	switch transport {
	case "stdio":
		// Keep stdout clean for JSON-RPC.
		log.SetOutput(os.Stderr)
		a.Logger.Info("starting MCP server", "transport", transport)
		return srv.ServeStdio()
	case "sse":
		a.Logger.Info("starting MCP server", "transport", transport, "port", port)
		return srv.ServeSSE(ctx, port)
	}
	return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
}

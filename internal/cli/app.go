package cli

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/seqflow"
	"github.com/aretw0/seqflow/internal/config"
	"github.com/aretw0/seqflow/internal/logging"
	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/observability"
	"github.com/aretw0/seqflow/pkg/ports"
	"github.com/aretw0/seqflow/pkg/workspace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Options configures an App.
type Options struct {
	ConfigFile string
	EnvFile    string
	Debug      bool
	// Server selects the configured log level instead of the quiet CLI logger.
	Server bool

	Out io.Writer
	// Lookup overrides environment lookup (tests).
	Lookup func(string) (string, bool)
	// EngineOptions are appended to every engine the App builds.
	EngineOptions []seqflow.Option
}

// App holds the resolved configuration and the shared backends of one
// command invocation.
type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Out       io.Writer
	Registry  *prometheus.Registry
	Metrics   *observability.Metrics
	Workspace *workspace.Manager
	Library   ports.DiagramSource

	engineOpts []seqflow.Option
	closers    []func() error
}

// NewApp loads the configuration and wires storage, library and metrics.
func NewApp(opts Options) (*App, error) {
	cfg, err := config.Load(config.Options{
		File:    opts.ConfigFile,
		EnvFile: opts.EnvFile,
		Lookup:  opts.Lookup,
		Logger:  logging.New(slog.LevelWarn),
	})
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:     cfg,
		Logger:     createLogger(cfg, opts.Debug, opts.Server),
		Out:        opts.Out,
		Registry:   prometheus.NewRegistry(),
		engineOpts: opts.EngineOptions,
	}
	if app.Out == nil {
		app.Out = os.Stdout
	}
	app.Registry.MustRegister(collectors.NewGoCollector())
	app.Metrics = observability.NewMetrics(app.Registry)

	store, locker, closeStore, err := newStore(cfg, app.Logger)
	if err != nil {
		return nil, err
	}
	if closeStore != nil {
		app.closers = append(app.closers, closeStore)
	}
	wsOpts := []workspace.Option{
		workspace.WithLogger(app.Logger),
		workspace.WithLockTTL(cfg.Redis.LockTTL),
	}
	if locker != nil {
		wsOpts = append(wsOpts, workspace.WithLocker(locker))
	}
	app.Workspace = workspace.NewManager(store, wsOpts...)

	if app.Library, err = newLibrary(cfg); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// NewEngine builds an engine configured from the App. Metrics and log hooks
// are always installed; extra hooks run after them.
func (a *App) NewEngine(extra ...domain.LifecycleHooks) *seqflow.Engine {
	opts := []seqflow.Option{
		seqflow.WithLogger(a.Logger),
		seqflow.WithStore(a.Workspace.Store()),
		seqflow.WithCanvas(a.Config.Canvas.Width, a.Config.Canvas.Height),
		seqflow.WithSpeed(a.Config.Speed),
		seqflow.WithLifecycleHooks(a.Metrics.Hooks()),
		seqflow.WithLifecycleHooks(observability.LogHooks(a.Logger)),
	}
	for _, h := range extra {
		opts = append(opts, seqflow.WithLifecycleHooks(h))
	}
	opts = append(opts, a.engineOpts...)
	return seqflow.New(opts...)
}

// Close releases the backends opened by NewApp.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// createLogger picks the logger for a command. Interactive commands stay
// quiet unless debugging, so logs never interleave with the trace on stdout.
func createLogger(cfg config.Config, debug, server bool) *slog.Logger {
	switch {
	case debug:
		return logging.New(slog.LevelDebug)
	case server:
		return logging.FromConfig(cfg.Log.Level, cfg.Log.Format)
	}
	return logging.NewNop()
}

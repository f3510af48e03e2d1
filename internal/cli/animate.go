package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/seqflow"
	"github.com/aretw0/seqflow/internal/presentation/tui"
	"github.com/aretw0/seqflow/pkg/ports"
)

// AnimateOptions configures Animate.
type AnimateOptions struct {
	Input
	// Start animates a single flow. Empty animates every flow.
	Start string
	// From and To animate the shortest path instead of a flow.
	From, To string
	// Speed overrides the configured speed when positive.
	Speed   float64
	Verbose bool
	// Watch replays the animation whenever the library changes.
	Watch  bool
	Banner bool
}

func (o AnimateOptions) validate() error {
	if (o.From == "") != (o.To == "") {
		return errors.New("--from and --to must be used together")
	}
	if o.From != "" && o.Start != "" {
		return errors.New("--start cannot be combined with --from/--to")
	}
	if o.Watch && o.Document == "" {
		return errors.New("--watch requires --document")
	}
	return o.Input.Validate()
}

// Animate loads the selected diagram and prints the animation trace until
// the run ends or ctx is cancelled.
func (a *App) Animate(ctx context.Context, opts AnimateOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if opts.Banner {
		tui.PrintBanner(a.Out)
	}

	eng := a.NewEngine()
	if opts.Speed > 0 {
		eng.SetSpeed(opts.Speed)
	}
	detach := tui.NewTerminal(a.Out, opts.Verbose).Attach(eng.Table())
	defer detach()

	if !opts.Watch {
		err := a.animateOnce(ctx, eng, opts)
		if isInterrupted(err) {
			printSystemMessage(a.Out, "Animation stopped.")
		}
		return err
	}
	return a.watch(ctx, eng, opts)
}

func (a *App) animateOnce(ctx context.Context, eng *seqflow.Engine, opts AnimateOptions) error {
	d, _, err := a.Resolve(ctx, opts.Input)
	if err != nil {
		return err
	}
	if err := eng.LoadDiagram(ctx, d); err != nil {
		return err
	}

	run, err := start(ctx, eng, opts)
	if err != nil {
		return err
	}
	a.Logger.Info("animation started", "run_id", run.ID(), "kind", run.Kind())

	select {
	case <-run.Done():
	case <-ctx.Done():
		eng.StopAnimation()
	}
	return run.Wait()
}

func start(ctx context.Context, eng *seqflow.Engine, opts AnimateOptions) (ports.Run, error) {
	switch {
	case opts.From != "":
		return eng.HighlightPath(ctx, opts.From, opts.To)
	case opts.Start != "":
		return eng.StartFlowAnimation(ctx, opts.Start)
	}
	return eng.AnimateAllFlows(ctx)
}

// watch replays the animation of a library document after every change,
// until ctx is cancelled.
func (a *App) watch(ctx context.Context, eng *seqflow.Engine, opts AnimateOptions) error {
	watchable, ok := a.Library.(ports.Watchable)
	if !ok {
		return errors.New("the configured library does not support watching")
	}
	changes, err := watchable.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch library: %w", err)
	}
	printSystemMessage(a.Out, "Watching '%s'.", opts.Document)

	for {
		iterCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- a.animateOnce(iterCtx, eng, opts) }()

		select {
		case <-ctx.Done():
			cancel()
			<-done
			printSystemMessage(a.Out, "Watcher stopped.")
			return nil

		case _, ok := <-changes:
			cancel()
			<-done
			if !ok {
				return nil
			}
			printSystemMessage(a.Out, "Change detected in '%s'.", opts.Document)
			// Let the file system settle before reloading.
			time.Sleep(100 * time.Millisecond)

		case err := <-done:
			cancel()
			if err != nil && !isInterrupted(err) {
				a.Logger.Error("animation failed", "document", opts.Document, "err", err)
				printSystemMessage(a.Out, "%s", seqflow.Advisory(err))
			}
			printSystemMessage(a.Out, "Waiting for changes...")
			select {
			case <-ctx.Done():
				printSystemMessage(a.Out, "Watcher stopped.")
				return nil
			case _, ok := <-changes:
				if !ok {
					return nil
				}
				printSystemMessage(a.Out, "Change detected in '%s'.", opts.Document)
			}
		}
	}
}

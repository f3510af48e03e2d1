/*
Package seqflow turns PlantUML-style sequence diagram text into an animated message flow.

It parses diagram text into entities, connections and notes, builds a directed flow graph from the
messages and drives animations over it through a renderer port. The engine never draws anything
itself: every visual change is a command on a ports.Renderer, so the same animation can feed a
terminal trace, a browser over server-sent events or a test recorder.

# Concept

A diagram is a list of entities (participants, actors, databases...) and the connections between
them. Messages such as "A -> B: login" become edges of the flow graph; activation markers and notes
stay in the diagram but never become edges. Traversals walk that graph:

  - StartFlowAnimation: depth-first from one entity, entering each entity once.
  - AnimateAllFlows: every source entity in turn.
  - HighlightPath: the shortest path between two entities (breadth-first).
  - PreviewPath: the reachable set, without animating.

Only one animation runs at a time. Starting a new one cancels the previous run and clears its
highlights; StopAnimation does the same on demand. Panics raised by a renderer or a hook end the
run with domain.ErrRuntimeFault instead of crashing the host.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/seqflow"
	)

	func main() {
		eng := seqflow.New(seqflow.WithSpeed(2))

		ctx := context.Background()
		if _, err := eng.Load(ctx, "User -> API: login\nAPI -> DB: query"); err != nil {
			log.Fatal(seqflow.Advisory(err))
		}

		run, err := eng.StartFlowAnimation(ctx, "User")
		if err != nil {
			log.Fatal(err)
		}
		if err := run.Wait(); err != nil {
			log.Println("animation stopped:", err)
		}

		// eng.Table() now holds the resting visual state.
	}
*/
package seqflow

package domain

import "errors"

// ErrNilInput is returned when a parse is given no input source at all.
var ErrNilInput = errors.New("nil input")

// ErrEmptyDiagram is returned when a parse produced no entities.
// It is advisory: callers decide whether to surface it.
var ErrEmptyDiagram = errors.New("diagram has no entities")

// ErrEntityNotFound is returned when an operation names an unknown entity.
var ErrEntityNotFound = errors.New("entity not found")

// ErrPathNotFound is returned when no directed path joins two entities.
var ErrPathNotFound = errors.New("path not found")

// ErrEngineBusy is returned when the engine is asked to reinitialize during a run.
var ErrEngineBusy = errors.New("animation is running")

// ErrRuntimeFault wraps an unexpected failure caught at the run boundary.
var ErrRuntimeFault = errors.New("runtime fault")

// ErrDiagramNotFound is returned when a diagram id cannot be found in the store.
var ErrDiagramNotFound = errors.New("diagram not found")

// ErrUnknownSample is returned when a sample key is not part of the catalog.
var ErrUnknownSample = errors.New("unknown sample")

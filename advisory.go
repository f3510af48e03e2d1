package seqflow

import (
	"context"
	"errors"

	"github.com/aretw0/seqflow/pkg/domain"
)

// Advisory maps an error to the single message shown to a user for one action.
// Unknown errors get a generic message; callers log the original.
func Advisory(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrEmptyDiagram):
		return "No entities found. Declare participants or write messages like \"A -> B: hello\"."
	case errors.Is(err, domain.ErrNilInput):
		return "No diagram text was provided."
	case errors.Is(err, domain.ErrEntityNotFound):
		return "That entity is not part of the diagram."
	case errors.Is(err, domain.ErrPathNotFound):
		return "No path connects those entities."
	case errors.Is(err, domain.ErrEngineBusy):
		return "An animation is running. Stop it first."
	case errors.Is(err, domain.ErrDiagramNotFound):
		return "No saved diagram with that name."
	case errors.Is(err, domain.ErrUnknownSample):
		return "Unknown sample; showing the default one."
	case errors.Is(err, domain.ErrRuntimeFault):
		return "The animation stopped unexpectedly and was reset."
	case errors.Is(err, context.Canceled):
		return "Animation stopped."
	}
	return "Something went wrong. See the logs for details."
}

// Package chat gives the dashboard's assistant feature a text-generation
// backend: either a remote automation webhook or the Anthropic API directly,
// behind one Gateway interface.
package chat

import (
	"context"
	"fmt"

	"github.com/cityscope/cityscope-cli/internal/resilience"
)

// Gateway answers free-form prompts about urban data.
type Gateway interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Error carries the failure class so the presentation layer can pick an
// appropriate user-facing hint.
type Error struct {
	Class resilience.ErrorClass
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("chat (%s): %v", e.Class, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage returns the hint shown for each failure class.
func (e *Error) UserMessage() string {
	switch e.Class {
	case resilience.ErrClassNetwork:
		return "The assistant could not be reached. Check your connection and try again."
	case resilience.ErrClassTimeout:
		return "The assistant took too long to answer. Try a shorter question."
	case resilience.ErrClassServer:
		return "The assistant service is having trouble. Try again in a minute."
	default:
		return "Something went wrong talking to the assistant."
	}
}

func wrapError(err error) *Error {
	return &Error{Class: resilience.Classify(err), Err: err}
}

package undofsm

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is returned when a machine is built without a definition
	// or a definition document is empty.
	ErrConfig = errors.New("missing configuration")
	// ErrInvalidState is returned when a target state is not configured.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidEvent is returned when the current state has no transition
	// for an event.
	ErrInvalidEvent = errors.New("invalid event")
	// ErrInvalidDefinition is returned by Validate and the loader.
	ErrInvalidDefinition = errors.New("invalid definition")
)

// TransitionError reports a rejected ChangeState or Trigger call.
// Kind is ErrInvalidState or ErrInvalidEvent.
type TransitionError struct {
	Kind  error
	State StateID // target for ErrInvalidState, current state for ErrInvalidEvent
	Event EventID // empty for ChangeState
}

func (e *TransitionError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrInvalidEvent):
		return fmt.Sprintf("%v %q in state %q", e.Kind, e.Event, e.State)
	case e.Event != "":
		return fmt.Sprintf("%v %q (event %q)", e.Kind, e.State, e.Event)
	default:
		return fmt.Sprintf("%v %q", e.Kind, e.State)
	}
}

func (e *TransitionError) Unwrap() error {
	return e.Kind
}

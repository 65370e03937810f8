package registry

import (
	"fmt"

	"flight-insurance/types"
)

// Setup stages reported by SetupError.
const (
	StageRoster   = "roster"
	StageKey      = "key"
	StageDial     = "dial"
	StageContract = "contract"
)

// SetupError aborts registry construction.
type SetupError struct {
	Actor string
	Group types.Group
	Stage string
	Err   error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup %s %s (%s): %v", e.Group, e.Actor, e.Stage, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// ActorNotFoundError is returned by lookups for a name absent from the requested group.
type ActorNotFoundError struct {
	Name  string
	Group types.Group
}

func (e *ActorNotFoundError) Error() string {
	return fmt.Sprintf("shielded contract for %s %s not found", e.Group, e.Name)
}

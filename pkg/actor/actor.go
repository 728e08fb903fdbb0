// Package actor identifies who performs an action: a user forwarded by the
// gateway, or the system itself for scheduled and event-driven work.
package actor

import (
	"context"
	"fmt"
)

// SystemID is the actor ID of system-initiated operations
const SystemID = "system"

// Actor represents the entity performing an action in the system
type Actor struct {
	// ID is the unique identifier of the actor (user ID)
	ID string `json:"id"`

	// RoleName is the actor's role (optional, for display purposes)
	RoleName string `json:"role_name,omitempty"`
}

// String returns a string representation of the actor for logging
func (a *Actor) String() string {
	if a.IsSystem() {
		return SystemID
	}
	if a.RoleName == "" {
		return a.ID
	}
	return fmt.Sprintf("%s (%s)", a.ID, a.RoleName)
}

// IsSystem returns true if the actor represents the system
func (a *Actor) IsSystem() bool {
	return a == nil || a.ID == SystemID
}

type contextKey string

const actorContextKey contextKey = "actor"

// FromContext retrieves the Actor from the context.
// Returns nil if no actor is present.
func FromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	a, ok := ctx.Value(actorContextKey).(*Actor)
	if !ok {
		return nil
	}
	return a
}

// WithActor returns a new context with the Actor attached
func WithActor(ctx context.Context, a *Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey, a)
}

// SystemActor returns an Actor representing the system itself.
// Use this for background jobs and event-driven operations.
func SystemActor() *Actor {
	return &Actor{ID: SystemID}
}

// OrSystem returns the actor with the given ID, or the system actor when id is empty
func OrSystem(id string) *Actor {
	if id == "" {
		return SystemActor()
	}
	return &Actor{ID: id}
}

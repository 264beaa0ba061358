package usecase

import (
	"context"

	"campusnav/internal/domain/entity"

	"github.com/paulmach/orb"
)

// StartNavigationInput represents the input for starting a navigation session
type StartNavigationInput struct {
	Destination  orb.Point
	InitialRoute entity.Route
}

// NavigationUsecase owns the single active navigation session: it tracks
// progress against the route, detects deviation, recalculates, advances
// through instruction steps and emits voice announcements.
type NavigationUsecase interface {
	// StartNavigation begins a session toward the destination using the
	// supplied initial route. A previous session is discarded implicitly.
	// Returns ErrLocationUnavailable when no starting location can be
	// resolved; in that case no session is created.
	StartNavigation(ctx context.Context, input *StartNavigationInput) error

	// StopNavigation ends the active session. No-op when idle.
	StopNavigation()

	// State returns a snapshot of the active session, or nil when idle.
	State() *entity.NavigationSnapshot

	// OnStateChange registers a subscriber notified with a full session
	// snapshot after every observable mutation, and with nil when the
	// session ends. The returned function removes the registration.
	OnStateChange(fn func(*entity.NavigationSnapshot)) (unsubscribe func())
}

package usecase

import (
	"context"
	"time"

	"campusnav/internal/domain/entity"
	"campusnav/internal/domain/service"
)

// PositionUsecase bridges the platform positioning capability to the
// filtered sample stream. It manages at most one continuous watch; callers
// share it through the subscription methods rather than starting their own.
type PositionUsecase interface {
	// CurrentPosition performs a single-shot fetch. The result passes through
	// the geo-sample filter; if the filter rejects it, the raw platform
	// sample is returned instead. One-shot fetches never notify subscribers.
	CurrentPosition(ctx context.Context, opts service.PositionOptions) (entity.CoordinateSample, error)

	// StartWatching begins continuous sampling. Calling it while a watch is
	// active replaces the prior watch. If positioning is unsupported it logs
	// a warning and returns nil.
	StartWatching(opts service.PositionOptions) error

	// StopWatching cancels the active watch. Idempotent.
	StopWatching()

	// IsWatching reports whether a continuous watch is active.
	IsWatching() bool

	// OnLocationUpdate registers a subscriber for every filtered sample from
	// the continuous watch. The returned function removes the registration.
	OnLocationUpdate(fn func(entity.CoordinateSample)) (unsubscribe func())

	// OnLocationError registers a subscriber for positioning failures during
	// the watch.
	OnLocationError(fn func(error)) (unsubscribe func())

	// LastKnownLocation returns the most recently accepted sample, if any.
	LastKnownLocation() (entity.CoordinateSample, bool)

	// LastUpdateTime returns the capture time of the most recently accepted
	// sample, if any.
	LastUpdateTime() (time.Time, bool)
}

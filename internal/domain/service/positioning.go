// Package service defines the interfaces for the platform capabilities the
// navigation core consumes. Host applications supply the adapters.
package service

import (
	"context"
	"fmt"
	"time"

	"campusnav/internal/domain/entity"

	"github.com/pkg/errors"
)

// ErrPositioningUnsupported is returned by providers that cannot supply
// positioning in the current environment.
var ErrPositioningUnsupported = errors.New("positioning is not supported in this environment")

// PositionErrorKind classifies positioning failures.
type PositionErrorKind string

const (
	PositionPermissionDenied PositionErrorKind = "permission_denied"
	PositionUnavailable      PositionErrorKind = "unavailable"
	PositionTimeout          PositionErrorKind = "timeout"
)

// PositionError is a positioning failure with its platform classification.
type PositionError struct {
	Kind PositionErrorKind
	Err  error
}

// NewPositionError creates a classified positioning error.
func NewPositionError(kind PositionErrorKind, err error) *PositionError {
	return &PositionError{Kind: kind, Err: err}
}

// Error implements the error interface.
func (e *PositionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("position unavailable (%s)", e.Kind)
	}

	return fmt.Sprintf("position unavailable (%s): %v", e.Kind, e.Err)
}

// Unwrap returns the underlying platform error.
func (e *PositionError) Unwrap() error {
	return e.Err
}

// PositionOptions mirrors the options accepted by platform positioning APIs.
type PositionOptions struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration // Accept a cached platform fix no older than this.
}

// WatchHandle identifies one active continuous watch.
type WatchHandle interface {
	// Stop cancels the watch. Stopping an already-stopped watch is a no-op.
	Stop()
}

// PositioningProvider abstracts the platform positioning capability.
type PositioningProvider interface {
	// CurrentPosition performs a single-shot fetch of the current position.
	CurrentPosition(ctx context.Context, opts PositionOptions) (entity.CoordinateSample, error)

	// WatchPosition begins continuous sampling, invoking onUpdate for every
	// raw sample and onError for every positioning failure until the
	// returned handle is stopped.
	WatchPosition(opts PositionOptions, onUpdate func(entity.CoordinateSample), onError func(error)) (WatchHandle, error)
}

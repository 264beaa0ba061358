package service

import (
	"context"

	"campusnav/internal/domain/entity"

	"github.com/paulmach/orb"
)

// RouteProvider fetches a walking route between two points. Implementations
// may fall back to a synthesized straight-line route, flagged on the returned
// route via IsRealRoute.
type RouteProvider interface {
	FetchWalkingRoute(ctx context.Context, origin, destination orb.Point) (*entity.Route, error)
}

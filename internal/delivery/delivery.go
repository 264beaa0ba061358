// Package delivery defines the transports that expose the application.
package delivery

import "context"

// Delivery is one transport serving the application to the outside world.
type Delivery interface {
	Serve(ctx context.Context) error
}

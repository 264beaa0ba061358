package entity

import (
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Building is one entry of the campus building directory. The directory is a
// read-only collaborator of the navigation core; it only supplies
// destinations.
type Building struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"` // Short campus code, e.g. "LIB" or "A-12".
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Location    orb.Point `json:"location"` // lon/lat order.
}

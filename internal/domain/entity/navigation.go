package entity

import "github.com/paulmach/orb"

// NavigationSnapshot is the complete observable state of the active
// navigation session. The navigation engine broadcasts a fresh snapshot to
// every subscriber after each observable mutation; there is no diffing.
type NavigationSnapshot struct {
	IsNavigating            bool              `json:"is_navigating"`
	CurrentStepIndex        int               `json:"current_step_index"`
	TotalSteps              int               `json:"total_steps"`
	RemainingDistanceMeters float64           `json:"remaining_distance_meters"`
	RemainingTimeSeconds    float64           `json:"remaining_time_seconds"`
	NextInstruction         string            `json:"next_instruction"`
	CurrentLocation         *CoordinateSample `json:"current_location,omitempty"`
	Destination             orb.Point         `json:"destination"` // Fixed for the session lifetime (lon/lat order).
	Route                   Route             `json:"route"`
	IsOffRoute              bool              `json:"is_off_route"`
	IsRecalculating         bool              `json:"is_recalculating"`
}

package usecase

import (
	"campusnav/internal/domain/entity"
	"campusnav/internal/domain/service"
)

// UpdateVoiceSettingsInput represents a partial voice settings update
type UpdateVoiceSettingsInput struct {
	Enabled  *bool    `json:"enabled,omitempty"`
	Language *string  `json:"language,omitempty"`
	Rate     *float64 `json:"rate,omitempty"`
	Pitch    *float64 `json:"pitch,omitempty"`
	Volume   *float64 `json:"volume,omitempty"`
}

// VoiceUsecase speaks navigation instructions using the process-wide voice
// settings. A new announcement preempts the previous one.
type VoiceUsecase interface {
	// Announce speaks text. No-op when voice is disabled or no speech
	// capability is available.
	Announce(text string)

	// TestVoice announces message, or a default phrase when empty.
	TestVoice(message string)

	// Settings returns the current voice settings.
	Settings() entity.VoiceSettings

	// UpdateSettings merges the partial update into the settings and returns
	// the result. Takes effect on the next announcement.
	UpdateSettings(input *UpdateVoiceSettingsInput) entity.VoiceSettings

	// AvailableVoices lists the voices of the speech capability.
	AvailableVoices() []service.VoiceDescriptor
}

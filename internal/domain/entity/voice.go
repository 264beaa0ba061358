package entity

// VoiceSettings is the process-wide configuration read by the voice announcer
// on every announcement. It may be changed by the user at any time and takes
// effect on the next announcement.
type VoiceSettings struct {
	Enabled  bool    `json:"enabled"`
	Language string  `json:"language"` // BCP 47 language tag, e.g. "en-US".
	Rate     float64 `json:"rate"`
	Pitch    float64 `json:"pitch"`
	Volume   float64 `json:"volume"`
}

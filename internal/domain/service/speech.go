package service

// SpeechOptions carries the per-utterance synthesis parameters.
type SpeechOptions struct {
	Language string
	Rate     float64
	Pitch    float64
	Volume   float64
}

// VoiceDescriptor describes one voice installed in the speech capability.
type VoiceDescriptor struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Default  bool   `json:"default"`
}

// SpeechSynthesizer abstracts the platform text-to-speech capability.
type SpeechSynthesizer interface {
	// Speak synthesizes text with the given parameters.
	Speak(text string, opts SpeechOptions) error

	// Cancel stops any currently-speaking utterance.
	Cancel()

	// Voices lists the available voice descriptors.
	Voices() []VoiceDescriptor
}

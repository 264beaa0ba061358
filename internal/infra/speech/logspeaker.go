// Package speech contains the bundled speech adapters. Hosts with a real
// text-to-speech engine substitute their own service.SpeechSynthesizer.
package speech

import (
	"log/slog"

	"campusnav/internal/domain/service"
)

// LogSynthesizer writes announcements to the structured log. Utterances are
// instantaneous, so Cancel has nothing to interrupt.
type LogSynthesizer struct {
	logger *slog.Logger
}

// NewLogSynthesizer creates a log-backed speech synthesizer.
func NewLogSynthesizer(logger *slog.Logger) *LogSynthesizer {
	return &LogSynthesizer{logger: logger}
}

// Speak logs the announcement with its synthesis parameters.
func (s *LogSynthesizer) Speak(text string, opts service.SpeechOptions) error {
	s.logger.Info("voice announcement",
		slog.String("text", text),
		slog.String("language", opts.Language),
		slog.Float64("rate", opts.Rate),
		slog.Float64("pitch", opts.Pitch),
		slog.Float64("volume", opts.Volume),
	)

	return nil
}

// Cancel implements service.SpeechSynthesizer.
func (s *LogSynthesizer) Cancel() {}

// Voices lists the single logical voice of the log backend.
func (s *LogSynthesizer) Voices() []service.VoiceDescriptor {
	return []service.VoiceDescriptor{
		{Name: "console", Language: "en-US", Default: true},
	}
}

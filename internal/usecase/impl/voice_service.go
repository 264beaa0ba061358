package impl

import (
	"log/slog"
	"sync"

	"campusnav/config"
	"campusnav/internal/domain/entity"
	"campusnav/internal/domain/service"
	"campusnav/internal/usecase"
)

const defaultTestPhrase = "Voice guidance is working correctly"

type voiceService struct {
	synth  service.SpeechSynthesizer
	logger *slog.Logger

	mu       sync.RWMutex
	settings entity.VoiceSettings
}

// NewVoiceService creates a new voice announcer instance
func NewVoiceService(synth service.SpeechSynthesizer, cfg *config.Config, logger *slog.Logger) usecase.VoiceUsecase {
	// If Voice is not configured, provide a default configuration
	if cfg.Voice == nil {
		cfg.Voice = &config.VoiceConfig{
			Enabled:  true,
			Language: "en-US",
			Rate:     1.0,
			Pitch:    1.0,
			Volume:   1.0,
		}
	}

	settings := entity.VoiceSettings{
		Enabled:  cfg.Voice.Enabled,
		Language: cfg.Voice.Language,
		Rate:     cfg.Voice.Rate,
		Pitch:    cfg.Voice.Pitch,
		Volume:   cfg.Voice.Volume,
	}
	if settings.Language == "" {
		settings.Language = "en-US"
	}

	return &voiceService{
		synth:    synth,
		logger:   logger,
		settings: settings,
	}
}

// Announce speaks text with the current settings, preempting any utterance
// that is still audible.
func (s *voiceService) Announce(text string) {
	s.mu.RLock()
	settings := s.settings
	s.mu.RUnlock()

	if !settings.Enabled || s.synth == nil {
		return
	}

	// At most one utterance audible at a time.
	s.synth.Cancel()

	err := s.synth.Speak(text, service.SpeechOptions{
		Language: settings.Language,
		Rate:     settings.Rate,
		Pitch:    settings.Pitch,
		Volume:   settings.Volume,
	})
	if err != nil {
		s.logger.Warn("failed to speak announcement",
			slog.String("text", text), slog.Any("error", err))
	}
}

// TestVoice announces message, or a default phrase when empty.
func (s *voiceService) TestVoice(message string) {
	if message == "" {
		message = defaultTestPhrase
	}

	s.Announce(message)
}

// Settings returns a copy of the current voice settings.
func (s *voiceService) Settings() entity.VoiceSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings
}

// UpdateSettings merges the partial update into the settings.
func (s *voiceService) UpdateSettings(input *usecase.UpdateVoiceSettingsInput) entity.VoiceSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.Enabled != nil {
		s.settings.Enabled = *input.Enabled
	}
	if input.Language != nil {
		s.settings.Language = *input.Language
	}
	if input.Rate != nil {
		s.settings.Rate = *input.Rate
	}
	if input.Pitch != nil {
		s.settings.Pitch = *input.Pitch
	}
	if input.Volume != nil {
		s.settings.Volume = *input.Volume
	}

	return s.settings
}

// AvailableVoices lists the voices of the speech capability.
func (s *voiceService) AvailableVoices() []service.VoiceDescriptor {
	if s.synth == nil {
		return nil
	}

	return s.synth.Voices()
}

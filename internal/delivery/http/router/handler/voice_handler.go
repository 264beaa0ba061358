package handler

import (
	"log/slog"
	"net/http"

	"campusnav/internal/delivery/http/response"
	"campusnav/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// VoiceHandlerParams holds dependencies for VoiceHandler, injected by Fx.
type VoiceHandlerParams struct {
	fx.In

	VoiceUC usecase.VoiceUsecase
	Logger  *slog.Logger
}

// VoiceHandler holds dependencies for voice-related handlers
type VoiceHandler struct {
	voiceUC usecase.VoiceUsecase
	logger  *slog.Logger
}

// NewVoiceHandler is the constructor for VoiceHandler
func NewVoiceHandler(params VoiceHandlerParams) *VoiceHandler {
	return &VoiceHandler{
		voiceUC: params.VoiceUC,
		logger:  params.Logger,
	}
}

// UpdateVoiceSettingsRequest represents a partial voice settings update
type UpdateVoiceSettingsRequest struct {
	Enabled  *bool    `json:"enabled,omitempty"`
	Language *string  `json:"language,omitempty"`
	Rate     *float64 `json:"rate,omitempty" validate:"omitempty,gt=0,lte=4"`
	Pitch    *float64 `json:"pitch,omitempty" validate:"omitempty,gt=0,lte=2"`
	Volume   *float64 `json:"volume,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// TestVoiceRequest represents the request body for a voice test
type TestVoiceRequest struct {
	Message string `json:"message,omitempty"`
}

// GetVoiceSettings handles reading the current voice settings
func (h *VoiceHandler) GetVoiceSettings(c echo.Context) error {
	return response.Success(c, http.StatusOK, h.voiceUC.Settings(), "Voice settings retrieved")
}

// UpdateVoiceSettings handles merging a partial voice settings update
func (h *VoiceHandler) UpdateVoiceSettings(c echo.Context) error {
	var req UpdateVoiceSettingsRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid voice settings input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	settings := h.voiceUC.UpdateSettings(&usecase.UpdateVoiceSettingsInput{
		Enabled:  req.Enabled,
		Language: req.Language,
		Rate:     req.Rate,
		Pitch:    req.Pitch,
		Volume:   req.Volume,
	})

	return response.Success(c, http.StatusOK, settings, "Voice settings updated")
}

// TestVoice handles speaking a test announcement
func (h *VoiceHandler) TestVoice(c echo.Context) error {
	var req TestVoiceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid voice test input")
	}

	h.voiceUC.TestVoice(req.Message)

	return response.Success(c, http.StatusOK, nil, "Voice test dispatched")
}

// GetAvailableVoices handles listing the speech capability voices
func (h *VoiceHandler) GetAvailableVoices(c echo.Context) error {
	return response.Success(c, http.StatusOK, h.voiceUC.AvailableVoices(), "Available voices retrieved")
}

package handler

import (
	"log/slog"
	"net/http"
	"time"

	"campusnav/internal/delivery/http/response"
	"campusnav/internal/domain/service"
	"campusnav/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const currentPositionTimeout = 10 * time.Second

// PositionHandlerParams holds dependencies for PositionHandler, injected by Fx.
type PositionHandlerParams struct {
	fx.In

	PositionUC usecase.PositionUsecase
	Logger     *slog.Logger
}

// PositionHandler holds dependencies for position-related handlers
type PositionHandler struct {
	positionUC usecase.PositionUsecase
	logger     *slog.Logger
}

// NewPositionHandler is the constructor for PositionHandler
func NewPositionHandler(params PositionHandlerParams) *PositionHandler {
	return &PositionHandler{
		positionUC: params.PositionUC,
		logger:     params.Logger,
	}
}

// GetCurrentPosition handles a single-shot position fetch
func (h *PositionHandler) GetCurrentPosition(c echo.Context) error {
	ctx := c.Request().Context()

	sample, err := h.positionUC.CurrentPosition(ctx, service.PositionOptions{
		EnableHighAccuracy: c.QueryParam("high_accuracy") == "true",
		Timeout:            currentPositionTimeout,
	})
	if err != nil {
		var posErr *service.PositionError
		if errors.As(err, &posErr) {
			return response.ServiceUnavailable(c, "POSITION_UNAVAILABLE", string(posErr.Kind))
		}

		h.logger.Warn("failed to fetch current position", slog.Any("error", err))

		return response.ServiceUnavailable(c, "POSITION_UNAVAILABLE", "Unable to determine position")
	}

	return response.Success(c, http.StatusOK, sample, "Current position retrieved")
}

// GetLastKnownPosition handles reading the cached position
func (h *PositionHandler) GetLastKnownPosition(c echo.Context) error {
	sample, ok := h.positionUC.LastKnownLocation()
	if !ok {
		return response.NotFound(c, "NO_KNOWN_POSITION", "No position has been accepted yet")
	}

	updatedAt, _ := h.positionUC.LastUpdateTime()

	return response.Success(c, http.StatusOK, map[string]any{
		"sample":     sample,
		"updated_at": updatedAt,
	}, "Last known position retrieved")
}

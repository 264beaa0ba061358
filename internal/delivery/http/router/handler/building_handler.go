package handler

import (
	"log/slog"
	"net/http"

	"campusnav/internal/delivery/http/response"
	"campusnav/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// BuildingHandlerParams holds dependencies for BuildingHandler, injected by Fx.
type BuildingHandlerParams struct {
	fx.In

	Directory repository.BuildingDirectory
	Logger    *slog.Logger
}

// BuildingHandler holds dependencies for building directory handlers
type BuildingHandler struct {
	directory repository.BuildingDirectory
	logger    *slog.Logger
}

// NewBuildingHandler is the constructor for BuildingHandler
func NewBuildingHandler(params BuildingHandlerParams) *BuildingHandler {
	return &BuildingHandler{
		directory: params.Directory,
		logger:    params.Logger,
	}
}

// ListBuildings handles listing the building directory
func (h *BuildingHandler) ListBuildings(c echo.Context) error {
	buildings, err := h.directory.ListBuildings(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to list buildings", slog.Any("error", err))

		return response.InternalServerError(c, "DIRECTORY_ERROR", "Failed to list buildings")
	}

	return response.Success(c, http.StatusOK, buildings, "Buildings retrieved")
}

// GetBuilding handles looking up one building by ID
func (h *BuildingHandler) GetBuilding(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid building ID")
	}

	building, err := h.directory.FindBuildingByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBuildingNotFound) {
			return response.NotFound(c, "BUILDING_NOT_FOUND", "Building not found")
		}

		h.logger.Error("failed to look up building", slog.Any("error", err))

		return response.InternalServerError(c, "DIRECTORY_ERROR", "Failed to look up building")
	}

	return response.Success(c, http.StatusOK, building, "Building retrieved")
}

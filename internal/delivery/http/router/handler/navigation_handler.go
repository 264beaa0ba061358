package handler

import (
	"log/slog"
	"net/http"

	"campusnav/internal/delivery/http/response"
	"campusnav/internal/domain/repository"
	"campusnav/internal/domain/service"
	"campusnav/internal/usecase"
	"campusnav/internal/usecase/impl"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// NavigationHandlerParams holds dependencies for NavigationHandler, injected by Fx.
type NavigationHandlerParams struct {
	fx.In

	NavigationUC usecase.NavigationUsecase
	PositionUC   usecase.PositionUsecase
	Routes       service.RouteProvider
	Directory    repository.BuildingDirectory
	Logger       *slog.Logger
}

// NavigationHandler holds dependencies for navigation-related handlers
type NavigationHandler struct {
	navigationUC usecase.NavigationUsecase
	positionUC   usecase.PositionUsecase
	routes       service.RouteProvider
	directory    repository.BuildingDirectory
	logger       *slog.Logger
}

// NewNavigationHandler is the constructor for NavigationHandler
func NewNavigationHandler(params NavigationHandlerParams) *NavigationHandler {
	return &NavigationHandler{
		navigationUC: params.NavigationUC,
		positionUC:   params.PositionUC,
		routes:       params.Routes,
		directory:    params.Directory,
		logger:       params.Logger,
	}
}

// DestinationRequest is a raw destination coordinate
type DestinationRequest struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// StartNavigationRequest represents the request body for starting navigation.
// Exactly one of building_id and destination must be supplied.
type StartNavigationRequest struct {
	BuildingID  string              `json:"building_id,omitempty" validate:"omitempty,uuid"`
	Destination *DestinationRequest `json:"destination,omitempty"`
}

// StartNavigation handles starting a navigation session
func (h *NavigationHandler) StartNavigation(c echo.Context) error {
	var req StartNavigationRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid navigation input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	destination, err := h.resolveDestination(c, &req)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	// The initial route is fetched here so the engine always starts with a
	// route in hand; the engine itself handles later recalculations.
	origin, ok := h.positionUC.LastKnownLocation()
	if !ok {
		origin, err = h.positionUC.CurrentPosition(ctx, service.PositionOptions{EnableHighAccuracy: true})
		if err != nil {
			return response.ServiceUnavailable(c, "LOCATION_UNAVAILABLE", "Unable to determine your current location")
		}
	}

	route, err := h.routes.FetchWalkingRoute(ctx, origin.Point(), destination)
	if err != nil {
		return response.BadGateway(c, "ROUTE_UNAVAILABLE", "Unable to fetch a walking route")
	}

	err = h.navigationUC.StartNavigation(ctx, &usecase.StartNavigationInput{
		Destination:  destination,
		InitialRoute: *route,
	})
	if err != nil {
		if errors.Is(err, impl.ErrLocationUnavailable) {
			return response.ServiceUnavailable(c, "LOCATION_UNAVAILABLE", "Unable to determine your current location")
		}

		h.logger.Error("failed to start navigation", slog.Any("error", err))

		return response.InternalServerError(c, "NAVIGATION_START_FAILED", "Failed to start navigation")
	}

	return response.Success(c, http.StatusCreated, h.navigationUC.State(), "Navigation started")
}

// StopNavigation handles stopping the active navigation session
func (h *NavigationHandler) StopNavigation(c echo.Context) error {
	h.navigationUC.StopNavigation()

	return response.Success(c, http.StatusOK, nil, "Navigation stopped")
}

// GetNavigationState handles reading the active session snapshot
func (h *NavigationHandler) GetNavigationState(c echo.Context) error {
	state := h.navigationUC.State()
	if state == nil {
		return response.Success(c, http.StatusOK, nil, "No active navigation session")
	}

	return response.Success(c, http.StatusOK, state, "Navigation state retrieved")
}

// resolveDestination turns the request into a destination point, consulting
// the building directory when a building ID was supplied.
func (h *NavigationHandler) resolveDestination(c echo.Context, req *StartNavigationRequest) (orb.Point, error) {
	if req.BuildingID != "" {
		id, err := uuid.Parse(req.BuildingID)
		if err != nil {
			return orb.Point{}, response.BadRequest(c, "INVALID_ID", "Invalid building ID")
		}

		building, err := h.directory.FindBuildingByID(c.Request().Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrBuildingNotFound) {
				return orb.Point{}, response.NotFound(c, "BUILDING_NOT_FOUND", "Building not found")
			}

			return orb.Point{}, response.InternalServerError(c, "DIRECTORY_ERROR", "Failed to look up building")
		}

		return building.Location, nil
	}

	if req.Destination == nil {
		return orb.Point{}, response.BadRequest(c, "MISSING_DESTINATION", "Either building_id or destination is required")
	}

	return orb.Point{req.Destination.Longitude, req.Destination.Latitude}, nil
}

// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"campusnav/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	NavigationHandler *handler.NavigationHandler
	VoiceHandler      *handler.VoiceHandler
	PositionHandler   *handler.PositionHandler
	BuildingHandler   *handler.BuildingHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	navigationHandler *handler.NavigationHandler
	voiceHandler      *handler.VoiceHandler
	positionHandler   *handler.PositionHandler
	buildingHandler   *handler.BuildingHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		navigationHandler: params.NavigationHandler,
		voiceHandler:      params.VoiceHandler,
		positionHandler:   params.PositionHandler,
		buildingHandler:   params.BuildingHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	navigationGroup := e.Group("/navigation")
	{
		navigationGroup.POST("/start", r.navigationHandler.StartNavigation)
		navigationGroup.POST("/stop", r.navigationHandler.StopNavigation)
		navigationGroup.GET("/state", r.navigationHandler.GetNavigationState)
	}

	voiceGroup := e.Group("/voice")
	{
		voiceGroup.GET("/settings", r.voiceHandler.GetVoiceSettings)
		voiceGroup.PATCH("/settings", r.voiceHandler.UpdateVoiceSettings)
		voiceGroup.POST("/test", r.voiceHandler.TestVoice)
		voiceGroup.GET("/voices", r.voiceHandler.GetAvailableVoices)
	}

	positionGroup := e.Group("/position")
	{
		positionGroup.GET("/current", r.positionHandler.GetCurrentPosition)
		positionGroup.GET("/last", r.positionHandler.GetLastKnownPosition)
	}

	buildingGroup := e.Group("/buildings")
	{
		buildingGroup.GET("", r.buildingHandler.ListBuildings)
		buildingGroup.GET("/:id", r.buildingHandler.GetBuilding)
	}
}

// Package osrm implements the walking-route provider against an
// OSRM-compatible HTTP routing API, with an optional straight-line fallback.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"campusnav/config"
	"campusnav/internal/domain/entity"
	"campusnav/internal/domain/service"
	"campusnav/internal/geo"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

const (
	defaultProfile          = "foot"
	defaultRequestTimeout   = 10 * time.Second
	defaultFallbackSpeedMps = 1.4
)

// Client fetches walking routes from an OSRM-compatible routing API.
type Client struct {
	baseURL          string
	profile          string
	httpClient       *http.Client
	logger           *slog.Logger
	enableFallback   bool
	fallbackSpeedMps float64
}

// NewRouteProvider creates a new walking-route provider instance
func NewRouteProvider(cfg *config.Config, logger *slog.Logger) (service.RouteProvider, error) {
	if cfg.Routing == nil || cfg.Routing.BaseURL == "" {
		return nil, errors.New("routing base URL is required")
	}

	profile := cfg.Routing.Profile
	if profile == "" {
		profile = defaultProfile
	}

	timeout := cfg.Routing.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	fallbackSpeed := cfg.Routing.FallbackSpeedMps
	if fallbackSpeed <= 0 {
		fallbackSpeed = defaultFallbackSpeedMps
	}

	return &Client{
		baseURL:          strings.TrimRight(cfg.Routing.BaseURL, "/"),
		profile:          profile,
		httpClient:       &http.Client{Timeout: timeout},
		logger:           logger,
		enableFallback:   cfg.Routing.EnableFallback,
		fallbackSpeedMps: fallbackSpeed,
	}, nil
}

// osrmResponse mirrors the subset of the OSRM route response we consume.
type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Legs []struct {
			Steps []struct {
				Name     string `json:"name"`
				Maneuver struct {
					Type     string `json:"type"`
					Modifier string `json:"modifier"`
				} `json:"maneuver"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// FetchWalkingRoute fetches a walking route, synthesizing a straight-line
// route when the API fails and fallback is enabled.
func (c *Client) FetchWalkingRoute(ctx context.Context, origin, destination orb.Point) (*entity.Route, error) {
	route, err := c.fetchFromAPI(ctx, origin, destination)
	if err == nil {
		return route, nil
	}

	if !c.enableFallback {
		return nil, err
	}

	c.logger.Warn("routing API failed, synthesizing straight-line route", slog.Any("error", err))

	return c.straightLineRoute(origin, destination), nil
}

func (c *Client) fetchFromAPI(ctx context.Context, origin, destination orb.Point) (*entity.Route, error) {
	url := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f?overview=full&geometries=geojson&steps=true",
		c.baseURL, c.profile,
		origin.Lon(), origin.Lat(),
		destination.Lon(), destination.Lat())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build routing request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "routing request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("routing API returned status %d", resp.StatusCode)
	}

	var parsed osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "failed to decode routing response")
	}

	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return nil, errors.Errorf("routing API returned no route (code %q)", parsed.Code)
	}

	best := parsed.Routes[0]

	coordinates := make([]orb.Point, 0, len(best.Geometry.Coordinates))
	for _, pair := range best.Geometry.Coordinates {
		if len(pair) < 2 {
			continue
		}
		coordinates = append(coordinates, orb.Point{pair[0], pair[1]})
	}

	var instructions []string
	for _, leg := range best.Legs {
		for _, step := range leg.Steps {
			instructions = append(instructions, instructionText(step.Maneuver.Type, step.Maneuver.Modifier, step.Name))
		}
	}

	return &entity.Route{
		Coordinates:     coordinates,
		DistanceMeters:  best.Distance,
		DurationSeconds: best.Duration,
		Instructions:    instructions,
		IsRealRoute:     true,
	}, nil
}

// straightLineRoute synthesizes a direct route between two points.
func (c *Client) straightLineRoute(origin, destination orb.Point) *entity.Route {
	distance := geo.Distance(origin, destination)

	return &entity.Route{
		Coordinates:     []orb.Point{origin, destination},
		DistanceMeters:  distance,
		DurationSeconds: distance / c.fallbackSpeedMps,
		Instructions:    []string{"Head straight to your destination"},
		IsRealRoute:     false,
	}
}

// instructionText renders one OSRM maneuver as a spoken instruction.
func instructionText(maneuverType, modifier, name string) string {
	onto := ""
	if name != "" {
		onto = " onto " + name
	}

	switch maneuverType {
	case "depart":
		if name != "" {
			return "Head along " + name
		}

		return "Start walking"
	case "arrive":
		return "Arrive at your destination"
	case "turn", "end of road", "fork":
		if modifier != "" {
			return "Turn " + modifier + onto
		}

		return "Continue" + onto
	case "continue", "new name":
		return "Continue" + onto
	case "roundabout", "rotary":
		return "Take the roundabout" + onto
	default:
		if modifier != "" {
			return "Keep " + modifier + onto
		}

		return "Continue" + onto
	}
}

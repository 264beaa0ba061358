package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Geolocation configuration for the geo-sample filter
	Geolocation *GeolocationConfig `json:"geolocation" yaml:"geolocation"`

	// Navigation configuration for the navigation engine
	Navigation *NavigationConfig `json:"navigation" yaml:"navigation"`

	// Voice configuration: defaults for the voice announcer
	Voice *VoiceConfig `json:"voice" yaml:"voice"`

	// Routing configuration for the walking-route provider
	Routing *RoutingConfig `json:"routing" yaml:"routing"`

	// Positioning configuration for the bundled positioning adapter
	Positioning *PositioningConfig `json:"positioning" yaml:"positioning"`

	// Directory holds the campus building directory entries
	Directory *DirectoryConfig `json:"directory" yaml:"directory"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// GeolocationConfig defines thresholds for the geo-sample filter
type GeolocationConfig struct {
	// Samples with an accuracy radius above this are candidates for rejection
	AccuracyThresholdMeters float64 `json:"accuracyThresholdMeters" yaml:"accuracyThresholdMeters"`

	// Exponential moving average weight on the newest sample, in (0,1]
	SmoothingFactor float64 `json:"smoothingFactor" yaml:"smoothingFactor"`

	// Displacements beyond this (plus the sample accuracy) within the spike
	// window are rejected as GPS spikes
	RejectJumpMeters float64 `json:"rejectJumpMeters" yaml:"rejectJumpMeters"`
}

// NavigationConfig defines thresholds for the navigation engine
type NavigationConfig struct {
	// Distance from every route vertex beyond which the user is off route
	OffRouteThresholdMeters float64 `json:"offRouteThresholdMeters" yaml:"offRouteThresholdMeters"`

	// Distance to the next route vertex below which the step advances
	StepAdvanceMeters float64 `json:"stepAdvanceMeters" yaml:"stepAdvanceMeters"`

	// Remaining distance below which the destination counts as reached
	ArrivalRadiusMeters float64 `json:"arrivalRadiusMeters" yaml:"arrivalRadiusMeters"`

	// Assumed walking speed used for remaining-time estimates, in m/s
	WalkingSpeedMps float64 `json:"walkingSpeedMps" yaml:"walkingSpeedMps"`

	// Maximum age of a cached location usable as the starting fix
	LocationCacheMaxAge time.Duration `json:"locationCacheMaxAge" yaml:"locationCacheMaxAge"`

	// Timeout for the fresh high-accuracy starting fix
	StartFixTimeout time.Duration `json:"startFixTimeout" yaml:"startFixTimeout"`
}

// VoiceConfig defines the default voice announcer settings
type VoiceConfig struct {
	Enabled  bool    `json:"enabled" yaml:"enabled"`
	Language string  `json:"language" yaml:"language"`
	Rate     float64 `json:"rate" yaml:"rate"`
	Pitch    float64 `json:"pitch" yaml:"pitch"`
	Volume   float64 `json:"volume" yaml:"volume"`
}

// RoutingConfig defines the walking-route provider configuration
type RoutingConfig struct {
	// Base URL of the OSRM-compatible routing API
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`

	// Routing profile, e.g. "foot"
	Profile string `json:"profile" yaml:"profile"`

	// Timeout for a single routing request
	RequestTimeout time.Duration `json:"requestTimeout" yaml:"requestTimeout"`

	// Synthesize a straight-line route when the routing API fails
	EnableFallback bool `json:"enableFallback" yaml:"enableFallback"`

	// Walking speed used to estimate the duration of synthesized routes, in m/s
	FallbackSpeedMps float64 `json:"fallbackSpeedMps" yaml:"fallbackSpeedMps"`
}

// PositioningConfig configures the bundled positioning adapter
type PositioningConfig struct {
	// Provider selects the adapter; currently only "simulated"
	Provider string `json:"provider" yaml:"provider"`

	// Interval between continuous-watch samples
	UpdateInterval time.Duration `json:"updateInterval" yaml:"updateInterval"`

	// Accuracy radius reported for simulated samples
	AccuracyMeters float64 `json:"accuracyMeters" yaml:"accuracyMeters"`

	// Track replayed by the simulated provider
	Track []TrackPoint `json:"track" yaml:"track"`
}

// TrackPoint is one point of the simulated track
type TrackPoint struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// DirectoryConfig seeds the in-memory building directory
type DirectoryConfig struct {
	Buildings []BuildingConfig `json:"buildings" yaml:"buildings"`
}

// BuildingConfig is one building directory entry
type BuildingConfig struct {
	Code        string  `json:"code" yaml:"code"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Latitude    float64 `json:"latitude" yaml:"latitude"`
	Longitude   float64 `json:"longitude" yaml:"longitude"`
}

// LoadWithEnv loads .yaml files through koanf, with environment variable
// overrides aligned against the keys present in the YAML file.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to a path and align each segment with the
			// existing YAML keys. Example: NAVIGATION_WALKINGSPEEDMPS ->
			// navigation.walkingSpeedMps (not navigation.walkingspeedmps)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	return LoadWithEnv[Config]("config", "config", "../config", "../../config")
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

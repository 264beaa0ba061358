package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
env:
  env: test
  serviceName: campusnav
  debug: true
  log:
    pretty: false
    level: info

http:
  port: 8080
  timeouts:
    readTimeout: 10s
    writeTimeout: 10s

geolocation:
  accuracyThresholdMeters: 50
  smoothingFactor: 0.25
  rejectJumpMeters: 120

navigation:
  offRouteThresholdMeters: 25
  stepAdvanceMeters: 20
  arrivalRadiusMeters: 10
  walkingSpeedMps: 1.4
  locationCacheMaxAge: 10s
  startFixTimeout: 20s

voice:
  enabled: true
  language: en-US
  rate: 1.0

routing:
  baseUrl: https://router.example.com
  profile: foot
  requestTimeout: 10s
  enableFallback: true

positioning:
  provider: simulated
  updateInterval: 2s
  track:
    - latitude: 26.8425
      longitude: 75.5648

directory:
  buildings:
    - code: LIB
      name: Central Library
      latitude: 26.8433
      longitude: 75.5642
`

func writeTestConfig(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testYAML), 0o600))
	t.Chdir(dir)
}

func TestLoadWithEnv(t *testing.T) {
	writeTestConfig(t)

	cfg, err := LoadWithEnv[Config]("config")
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env.Env)
	assert.Equal(t, "campusnav", cfg.Env.ServiceName)
	assert.True(t, cfg.Env.Debug)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeouts.ReadTimeout)

	require.NotNil(t, cfg.Geolocation)
	assert.Equal(t, 50.0, cfg.Geolocation.AccuracyThresholdMeters)
	assert.Equal(t, 0.25, cfg.Geolocation.SmoothingFactor)

	require.NotNil(t, cfg.Navigation)
	assert.Equal(t, 25.0, cfg.Navigation.OffRouteThresholdMeters)
	assert.Equal(t, 10*time.Second, cfg.Navigation.LocationCacheMaxAge)
	assert.Equal(t, 20*time.Second, cfg.Navigation.StartFixTimeout)

	require.NotNil(t, cfg.Routing)
	assert.Equal(t, "https://router.example.com", cfg.Routing.BaseURL)
	assert.True(t, cfg.Routing.EnableFallback)

	require.NotNil(t, cfg.Positioning)
	require.Len(t, cfg.Positioning.Track, 1)
	assert.Equal(t, 26.8425, cfg.Positioning.Track[0].Latitude)

	require.NotNil(t, cfg.Directory)
	require.Len(t, cfg.Directory.Buildings, 1)
	assert.Equal(t, "LIB", cfg.Directory.Buildings[0].Code)
}

func TestLoadWithEnv_EnvironmentOverrides(t *testing.T) {
	writeTestConfig(t)

	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("NAVIGATION_WALKINGSPEEDMPS", "2.0")
	t.Setenv("NAVIGATION_STARTFIXTIMEOUT", "30s")
	t.Setenv("ROUTING_BASEURL", "https://osrm.internal")

	cfg, err := LoadWithEnv[Config]("config")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 2.0, cfg.Navigation.WalkingSpeedMps)
	assert.Equal(t, 30*time.Second, cfg.Navigation.StartFixTimeout)
	assert.Equal(t, "https://osrm.internal", cfg.Routing.BaseURL)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[Config]("config")

	assert.Error(t, err)
}

func TestCanonicalizeEnvKey(t *testing.T) {
	existing := map[string]any{
		"navigation": map[string]any{
			"walkingSpeedMps": 1.4,
		},
	}

	assert.Equal(t, "navigation.walkingSpeedMps", canonicalizeEnvKey("NAVIGATION_WALKINGSPEEDMPS", existing))
	// Unknown segments pass through lowercased
	assert.Equal(t, "unknown.key", canonicalizeEnvKey("UNKNOWN_KEY", existing))
}

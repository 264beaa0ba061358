package directory

import (
	"context"
	"testing"

	"campusnav/config"
	"campusnav/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Directory: &config.DirectoryConfig{
			Buildings: []config.BuildingConfig{
				{Code: "LIB", Name: "Central Library", Description: "Main campus library", Latitude: 26.8433, Longitude: 75.5642},
				{Code: "CAFE", Name: "Food Court", Latitude: 26.8427, Longitude: 75.5639},
			},
		},
	}
}

func TestMemoryDirectory_ListBuildings(t *testing.T) {
	dir := NewMemoryDirectory(testConfig())

	buildings, err := dir.ListBuildings(context.Background())

	require.NoError(t, err)
	require.Len(t, buildings, 2)
	assert.Equal(t, "Central Library", buildings[0].Name)
	// Location is stored in lon/lat order
	assert.Equal(t, 75.5642, buildings[0].Location.Lon())
	assert.Equal(t, 26.8433, buildings[0].Location.Lat())
}

func TestMemoryDirectory_FindBuildingByID(t *testing.T) {
	dir := NewMemoryDirectory(testConfig())

	buildings, err := dir.ListBuildings(context.Background())
	require.NoError(t, err)

	found, err := dir.FindBuildingByID(context.Background(), buildings[0].ID)

	require.NoError(t, err)
	assert.Equal(t, "LIB", found.Code)
}

func TestMemoryDirectory_FindBuildingByCode(t *testing.T) {
	dir := NewMemoryDirectory(testConfig())

	found, err := dir.FindBuildingByCode(context.Background(), "lib")

	require.NoError(t, err)
	assert.Equal(t, "Central Library", found.Name)
}

func TestMemoryDirectory_NotFound(t *testing.T) {
	dir := NewMemoryDirectory(testConfig())

	_, err := dir.FindBuildingByCode(context.Background(), "GYM")
	assert.ErrorIs(t, err, repository.ErrBuildingNotFound)
}

func TestMemoryDirectory_DeterministicIDs(t *testing.T) {
	first, err := NewMemoryDirectory(testConfig()).ListBuildings(context.Background())
	require.NoError(t, err)

	second, err := NewMemoryDirectory(testConfig()).ListBuildings(context.Background())
	require.NoError(t, err)

	// IDs are derived from the campus code, so they survive restarts
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[1].ID, second[1].ID)
	assert.NotEqual(t, first[0].ID, first[1].ID)
}

func TestMemoryDirectory_EmptyConfig(t *testing.T) {
	dir := NewMemoryDirectory(&config.Config{})

	buildings, err := dir.ListBuildings(context.Background())

	require.NoError(t, err)
	assert.Empty(t, buildings)
}

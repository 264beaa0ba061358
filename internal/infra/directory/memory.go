// Package directory provides the in-memory building directory adapter. The
// real directory lives in the surrounding application; this adapter seeds a
// read-only copy from configuration.
package directory

import (
	"context"
	"strings"

	"campusnav/config"
	"campusnav/internal/domain/entity"
	"campusnav/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

type memoryDirectory struct {
	buildings []*entity.Building
	byID      map[uuid.UUID]*entity.Building
	byCode    map[string]*entity.Building
}

// NewMemoryDirectory creates a building directory seeded from config.
// Building IDs are derived deterministically from the campus code so they
// survive restarts.
func NewMemoryDirectory(cfg *config.Config) repository.BuildingDirectory {
	dir := &memoryDirectory{
		byID:   make(map[uuid.UUID]*entity.Building),
		byCode: make(map[string]*entity.Building),
	}

	if cfg.Directory == nil {
		return dir
	}

	for _, b := range cfg.Directory.Buildings {
		building := &entity.Building{
			ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte("building:"+b.Code)),
			Code:        b.Code,
			Name:        b.Name,
			Description: b.Description,
			Location:    orb.Point{b.Longitude, b.Latitude},
		}

		dir.buildings = append(dir.buildings, building)
		dir.byID[building.ID] = building
		dir.byCode[strings.ToUpper(b.Code)] = building
	}

	return dir
}

// ListBuildings returns every directory entry.
func (d *memoryDirectory) ListBuildings(ctx context.Context) ([]*entity.Building, error) {
	buildings := make([]*entity.Building, len(d.buildings))
	copy(buildings, d.buildings)

	return buildings, nil
}

// FindBuildingByID looks up a building by its identifier.
func (d *memoryDirectory) FindBuildingByID(ctx context.Context, id uuid.UUID) (*entity.Building, error) {
	building, ok := d.byID[id]
	if !ok {
		return nil, repository.ErrBuildingNotFound
	}

	return building, nil
}

// FindBuildingByCode looks up a building by its campus code.
func (d *memoryDirectory) FindBuildingByCode(ctx context.Context, code string) (*entity.Building, error) {
	building, ok := d.byCode[strings.ToUpper(code)]
	if !ok {
		return nil, repository.ErrBuildingNotFound
	}

	return building, nil
}

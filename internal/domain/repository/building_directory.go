// Package repository defines the data-access interfaces consumed by the
// navigation core. The building directory itself is owned by the surrounding
// application; this core only reads destinations from it.
package repository

import (
	"context"

	"campusnav/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrBuildingNotFound is returned when no building matches the lookup.
var ErrBuildingNotFound = errors.New("building not found")

// BuildingDirectory is a read-only view of the campus building directory.
type BuildingDirectory interface {
	ListBuildings(ctx context.Context) ([]*entity.Building, error)
	FindBuildingByID(ctx context.Context, id uuid.UUID) (*entity.Building, error)
	FindBuildingByCode(ctx context.Context, code string) (*entity.Building, error)
}

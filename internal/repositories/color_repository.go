package repositories

import (
	"context"

	"storefront/internal/models"
)

// ColorRepository defines the interface for color data access. Lookups only
// see active colors.
type ColorRepository interface {
	Create(ctx context.Context, color *models.Color) error
	Update(ctx context.Context, color *models.Color) error
	GetActiveByID(ctx context.Context, id uint64) (*models.Color, error)
	ListActive(ctx context.Context) ([]models.Color, error)
	ExistsActiveName(ctx context.Context, name string, excludeID uint64) (bool, error)
}

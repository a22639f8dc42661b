package repositories

import (
	"context"

	"storefront/internal/models"
)

// SizeRepository defines the interface for size data access. Lookups only
// see active sizes.
type SizeRepository interface {
	Create(ctx context.Context, size *models.Size) error
	Update(ctx context.Context, size *models.Size) error
	GetActiveByID(ctx context.Context, id uint64) (*models.Size, error)
	ListActive(ctx context.Context, category models.SizeCategory) ([]models.Size, error)
	ExistsActiveName(ctx context.Context, name string, category models.SizeCategory, excludeID uint64) (bool, error)
	MaxSortOrder(ctx context.Context, category models.SizeCategory) (int, bool, error)
}

package repositories

import (
	"context"

	"storefront/internal/models"
)

// ProductFilter narrows product listings. The zero value lists everything.
type ProductFilter struct {
	VisibleOnly bool   // active and published only
	Brand       string // exact match
	Search      string // case-insensitive substring of name, description or brand
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uint64) (*models.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	ExistsActiveNameBrand(ctx context.Context, name, brand string, excludeID uint64) (bool, error)
	DistinctVisible(ctx context.Context, column string) ([]string, error)
}

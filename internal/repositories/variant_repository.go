package repositories

import (
	"context"

	"storefront/internal/models"
)

// VariantRepository defines the interface for product variant data access.
type VariantRepository interface {
	Create(ctx context.Context, variant *models.ProductVariant) error
	Update(ctx context.Context, variant *models.ProductVariant) error
	GetByID(ctx context.Context, id uint64) (*models.ProductVariant, error)
	FindByTriple(ctx context.Context, productID, colorID, sizeID uint64) (*models.ProductVariant, error)
	ListByProduct(ctx context.Context, productID uint64, activeOnly bool) ([]models.ProductVariant, error)
	DeactivateByProduct(ctx context.Context, productID uint64) (int64, error)
	AdjustStock(ctx context.Context, id uint64, delta int) (*models.ProductVariant, error)
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/models"
)

// GORMVariantRepository is a GORM implementation of VariantRepository.
type GORMVariantRepository struct {
	db *gorm.DB
}

// NewGORMVariantRepository creates a new instance of GORMVariantRepository.
func NewGORMVariantRepository(db *gorm.DB) *GORMVariantRepository {
	return &GORMVariantRepository{db: db}
}

// Create inserts a variant. The unique index on (product, color, size)
// rejects a second variant for the same combination.
func (r *GORMVariantRepository) Create(ctx context.Context, variant *models.ProductVariant) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(variant).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: variant for product %d, color %d, size %d already exists",
			models.ErrConflict, variant.ProductID, variant.ColorID, variant.SizeID)
	}
	if err != nil {
		return fmt.Errorf("failed to create variant: %w", err)
	}
	return nil
}

// Update saves the mutable columns of a variant.
func (r *GORMVariantRepository) Update(ctx context.Context, variant *models.ProductVariant) error {
	res := r.db.WithContext(ctx).Model(variant).
		Select("stock", "images", "is_active", "updated_at").
		Updates(variant)
	if res.Error != nil {
		return fmt.Errorf("failed to update variant: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("variant", variant.ID)
	}
	return nil
}

// GetByID retrieves a variant with its color and size.
func (r *GORMVariantRepository) GetByID(ctx context.Context, id uint64) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).Preload("Color").Preload("Size").First(&variant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("variant", id)
		}
		return nil, fmt.Errorf("failed to get variant by id %d: %w", id, err)
	}
	return &variant, nil
}

// FindByTriple returns the variant for a product/color/size combination,
// active or not.
func (r *GORMVariantRepository) FindByTriple(ctx context.Context, productID, colorID, sizeID uint64) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND color_id = ? AND size_id = ?", productID, colorID, sizeID).
		First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no variant for product %d, color %d, size %d",
				models.ErrNotFound, productID, colorID, sizeID)
		}
		return nil, fmt.Errorf("failed to find variant: %w", err)
	}
	return &variant, nil
}

// ListByProduct returns the variants of a product with color and size joined in.
func (r *GORMVariantRepository) ListByProduct(ctx context.Context, productID uint64, activeOnly bool) ([]models.ProductVariant, error) {
	q := r.db.WithContext(ctx).Preload("Color").Preload("Size").Where("product_id = ?", productID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	variants := make([]models.ProductVariant, 0)
	if err := q.Order("id ASC").Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("failed to list variants of product %d: %w", productID, err)
	}
	return variants, nil
}

// DeactivateByProduct marks every variant of the product inactive and
// returns how many rows changed.
func (r *GORMVariantRepository) DeactivateByProduct(ctx context.Context, productID uint64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("product_id = ? AND is_active = ?", productID, true).
		Update("is_active", false)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to deactivate variants of product %d: %w", productID, res.Error)
	}
	return res.RowsAffected, nil
}

// AdjustStock adds delta to the stock in a single statement. The guard in
// the WHERE clause keeps stock from going negative.
func (r *GORMVariantRepository) AdjustStock(ctx context.Context, id uint64, delta int) (*models.ProductVariant, error) {
	res := r.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to adjust stock of variant %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: stock of variant %d cannot go below zero", models.ErrConflict, id)
	}
	return r.GetByID(ctx, id)
}

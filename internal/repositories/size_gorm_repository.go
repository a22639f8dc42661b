package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storefront/internal/models"
)

// GORMSizeRepository is a GORM implementation of SizeRepository.
type GORMSizeRepository struct {
	db *gorm.DB
}

// NewGORMSizeRepository creates a new instance of GORMSizeRepository.
func NewGORMSizeRepository(db *gorm.DB) *GORMSizeRepository {
	return &GORMSizeRepository{db: db}
}

func (r *GORMSizeRepository) Create(ctx context.Context, size *models.Size) error {
	if err := r.db.WithContext(ctx).Create(size).Error; err != nil {
		return fmt.Errorf("failed to create size: %w", err)
	}
	return nil
}

func (r *GORMSizeRepository) Update(ctx context.Context, size *models.Size) error {
	res := r.db.WithContext(ctx).Model(size).Select("*").Omit("created_at").Updates(size)
	if res.Error != nil {
		return fmt.Errorf("failed to update size: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("size", size.ID)
	}
	return nil
}

func (r *GORMSizeRepository) GetActiveByID(ctx context.Context, id uint64) (*models.Size, error) {
	var size models.Size
	err := r.db.WithContext(ctx).First(&size, "id = ? AND is_active = ?", id, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("size", id)
		}
		return nil, fmt.Errorf("failed to get size by id %d: %w", id, err)
	}
	return &size, nil
}

// ListActive returns active sizes. An empty category lists every category.
func (r *GORMSizeRepository) ListActive(ctx context.Context, category models.SizeCategory) ([]models.Size, error) {
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	} else {
		q = q.Order("category ASC")
	}
	sizes := make([]models.Size, 0)
	if err := q.Order("sort_order ASC").Order("name ASC").Find(&sizes).Error; err != nil {
		return nil, fmt.Errorf("failed to list sizes: %w", err)
	}
	return sizes, nil
}

func (r *GORMSizeRepository) ExistsActiveName(ctx context.Context, name string, category models.SizeCategory, excludeID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Size{}).
		Where("name = ? AND category = ? AND is_active = ? AND id <> ?", name, category, true, excludeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check size name: %w", err)
	}
	return count > 0, nil
}

// MaxSortOrder returns the highest sort order among active sizes of the
// category. The boolean is false when the category has no sizes.
func (r *GORMSizeRepository) MaxSortOrder(ctx context.Context, category models.SizeCategory) (int, bool, error) {
	var size models.Size
	err := r.db.WithContext(ctx).
		Where("category = ? AND is_active = ?", category, true).
		Order("sort_order DESC").
		First(&size).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read max sort order: %w", err)
	}
	return size.SortOrder, true, nil
}

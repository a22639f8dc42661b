package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storefront/internal/models"
)

// GORMColorRepository is a GORM implementation of ColorRepository.
type GORMColorRepository struct {
	db *gorm.DB
}

// NewGORMColorRepository creates a new instance of GORMColorRepository.
func NewGORMColorRepository(db *gorm.DB) *GORMColorRepository {
	return &GORMColorRepository{db: db}
}

func (r *GORMColorRepository) Create(ctx context.Context, color *models.Color) error {
	if err := r.db.WithContext(ctx).Create(color).Error; err != nil {
		return fmt.Errorf("failed to create color: %w", err)
	}
	return nil
}

func (r *GORMColorRepository) Update(ctx context.Context, color *models.Color) error {
	res := r.db.WithContext(ctx).Model(color).Select("*").Omit("created_at").Updates(color)
	if res.Error != nil {
		return fmt.Errorf("failed to update color: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("color", color.ID)
	}
	return nil
}

func (r *GORMColorRepository) GetActiveByID(ctx context.Context, id uint64) (*models.Color, error) {
	var color models.Color
	err := r.db.WithContext(ctx).First(&color, "id = ? AND is_active = ?", id, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("color", id)
		}
		return nil, fmt.Errorf("failed to get color by id %d: %w", id, err)
	}
	return &color, nil
}

func (r *GORMColorRepository) ListActive(ctx context.Context) ([]models.Color, error) {
	colors := make([]models.Color, 0)
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&colors).Error; err != nil {
		return nil, fmt.Errorf("failed to list colors: %w", err)
	}
	return colors, nil
}

// ExistsActiveName is a case-sensitive exact match.
func (r *GORMColorRepository) ExistsActiveName(ctx context.Context, name string, excludeID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Color{}).
		Where("name = ? AND is_active = ? AND id <> ?", name, true, excludeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check color name: %w", err)
	}
	return count > 0, nil
}

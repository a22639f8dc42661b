package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storefront/internal/models"
)

// GORMAdminRepository is a GORM implementation of AdminRepository.
type GORMAdminRepository struct {
	db *gorm.DB
}

// NewGORMAdminRepository creates a new instance of GORMAdminRepository.
func NewGORMAdminRepository(db *gorm.DB) *GORMAdminRepository {
	return &GORMAdminRepository{db: db}
}

// Create creates a new admin in the database.
func (r *GORMAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	err := r.db.WithContext(ctx).Create(admin).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: admin with this username or email already exists", models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *GORMAdminRepository) Update(ctx context.Context, admin *models.Admin) error {
	res := r.db.WithContext(ctx).Model(admin).Select("*").Omit("created_at").Updates(admin)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: email already in use", models.ErrConflict)
	}
	if res.Error != nil {
		return fmt.Errorf("failed to update admin: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("admin", admin.ID)
	}
	return nil
}

// GetByID retrieves an admin by id, active or not.
func (r *GORMAdminRepository) GetByID(ctx context.Context, id uint64) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("admin", id)
		}
		return nil, fmt.Errorf("failed to get admin by id %d: %w", id, err)
	}
	return &admin, nil
}

// GetByUsername retrieves an admin by username, active or not.
func (r *GORMAdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: admin with username %s", models.ErrNotFound, username)
		}
		return nil, fmt.Errorf("failed to get admin by username %s: %w", username, err)
	}
	return &admin, nil
}

func (r *GORMAdminRepository) ExistsUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Admin{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check admin identity: %w", err)
	}
	return count > 0, nil
}

func (r *GORMAdminRepository) ExistsEmail(ctx context.Context, email string, excludeID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Admin{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check admin email: %w", err)
	}
	return count > 0, nil
}

func (r *GORMAdminRepository) ListActive(ctx context.Context) ([]models.Admin, error) {
	admins := make([]models.Admin, 0)
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("created_at DESC").Order("id DESC").Find(&admins).Error; err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, nil
}

// Count returns the number of admin rows, including deactivated ones.
func (r *GORMAdminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Admin{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

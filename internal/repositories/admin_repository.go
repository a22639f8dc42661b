package repositories

import (
	"context"

	"storefront/internal/models"
)

// AdminRepository defines the interface for admin data access.
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	Update(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id uint64) (*models.Admin, error)
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
	ExistsUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	ExistsEmail(ctx context.Context, email string, excludeID uint64) (bool, error)
	ListActive(ctx context.Context) ([]models.Admin, error)
	Count(ctx context.Context) (int64, error)
}

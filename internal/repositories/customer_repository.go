package repositories

import (
	"context"
	"time"

	"storefront/internal/models"
)

// CustomerRepository defines the interface for customer data access.
// Only GetByEmailWithPassword loads the password hash.
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	Update(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uint64) (*models.Customer, error)
	GetByEmailWithPassword(ctx context.Context, email string) (*models.Customer, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)
	ListActive(ctx context.Context) ([]models.Customer, error)
	TouchLogin(ctx context.Context, id uint64, at time.Time) error
}

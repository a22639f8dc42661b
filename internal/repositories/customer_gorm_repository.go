package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"storefront/internal/models"
)

// GORMCustomerRepository is a GORM implementation of CustomerRepository.
type GORMCustomerRepository struct {
	db *gorm.DB
}

// NewGORMCustomerRepository creates a new instance of GORMCustomerRepository.
func NewGORMCustomerRepository(db *gorm.DB) *GORMCustomerRepository {
	return &GORMCustomerRepository{
		db: db,
	}
}

func withoutPassword(q *gorm.DB) *gorm.DB {
	return q.Omit("password")
}

// Create creates a new customer in the database.
func (r *GORMCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	err := r.db.WithContext(ctx).Create(customer).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: customer with email %s already exists", models.ErrConflict, customer.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// Update saves the profile columns. The password is never overwritten here.
func (r *GORMCustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	res := r.db.WithContext(ctx).Model(customer).Select("*").Omit("created_at", "password").Updates(customer)
	if res.Error != nil {
		return fmt.Errorf("failed to update customer: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("customer", customer.ID)
	}
	return nil
}

// GetByID retrieves a customer by id without the password hash.
func (r *GORMCustomerRepository) GetByID(ctx context.Context, id uint64) (*models.Customer, error) {
	var customer models.Customer
	if err := withoutPassword(r.db.WithContext(ctx)).First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("customer", id)
		}
		return nil, fmt.Errorf("failed to get customer by id %d: %w", id, err)
	}
	return &customer, nil
}

// GetByEmailWithPassword retrieves a customer by email, password hash included.
func (r *GORMCustomerRepository) GetByEmailWithPassword(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer with email %s", models.ErrNotFound, email)
		}
		return nil, fmt.Errorf("failed to get customer by email %s: %w", email, err)
	}
	return &customer, nil
}

func (r *GORMCustomerRepository) ExistsEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Customer{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check customer email: %w", err)
	}
	return count > 0, nil
}

func (r *GORMCustomerRepository) ListActive(ctx context.Context) ([]models.Customer, error) {
	customers := make([]models.Customer, 0)
	err := withoutPassword(r.db.WithContext(ctx)).
		Where("is_active = ?", true).
		Order("created_at DESC").Order("id DESC").
		Find(&customers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// TouchLogin stamps the last successful login.
func (r *GORMCustomerRepository) TouchLogin(ctx context.Context, id uint64, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to record login of customer %d: %w", id, err)
	}
	return nil
}

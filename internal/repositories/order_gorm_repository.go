package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storefront/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

func withOrderDetails(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Customer", withoutPassword).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Variant").
		Preload("Items.Variant.Color").
		Preload("Items.Variant.Size")
}

// GetByID retrieves an order with its customer and items.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id uint64) (*models.Order, error) {
	var order models.Order
	if err := withOrderDetails(r.db.WithContext(ctx)).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("order", id)
		}
		return nil, fmt.Errorf("failed to get order by id %d: %w", id, err)
	}
	return &order, nil
}

// List returns the orders matching filter, newest first.
func (r *GORMOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	q := withOrderDetails(r.db.WithContext(ctx))
	if filter.CustomerID != 0 {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	orders := make([]models.Order, 0)
	if err := q.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

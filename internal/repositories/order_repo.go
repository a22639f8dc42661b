package repositories

import (
	"context"

	"storefront/internal/models"
)

// OrderFilter narrows order listings. The zero value lists every order.
type OrderFilter struct {
	CustomerID uint64
	Status     models.OrderStatus
}

// OrderRepository defines the interface for order data access. Orders are
// read with their customer and their items, each item with its variant.
type OrderRepository interface {
	GetByID(ctx context.Context, id uint64) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
}

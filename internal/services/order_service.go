package services

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// OrderService exposes customer orders to the back office and to the
// customers who placed them. Orders are read-only here.
type OrderService struct {
	orders repositories.OrderRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(orders repositories.OrderRepository) *OrderService {
	return &OrderService{
		orders: orders,
	}
}

func withItems(orders []models.Order) []models.Order {
	for i := range orders {
		if orders[i].Items == nil {
			orders[i].Items = []models.OrderItem{}
		}
	}
	return orders
}

// FindAll returns every order, newest first. A non-empty status narrows the
// listing.
func (s *OrderService) FindAll(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", models.ErrValidation, status)
	}
	orders, err := s.orders.List(ctx, repositories.OrderFilter{Status: status})
	if err != nil {
		return nil, err
	}
	return withItems(orders), nil
}

// FindByID returns one order with its customer and items.
func (s *OrderService) FindByID(ctx context.Context, id uint64) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Items == nil {
		order.Items = []models.OrderItem{}
	}
	return order, nil
}

// FindByCustomer returns the orders of one customer, newest first.
func (s *OrderService) FindByCustomer(ctx context.Context, customerID uint64) ([]models.Order, error) {
	if customerID == 0 {
		return nil, fmt.Errorf("%w: customer id is required", models.ErrValidation)
	}
	orders, err := s.orders.List(ctx, repositories.OrderFilter{CustomerID: customerID})
	if err != nil {
		return nil, err
	}
	return withItems(orders), nil
}

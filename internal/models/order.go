package models

import "time"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// OrderItem is one line of an order: a quantity of a single variant at the
// price charged when the order was placed.
type OrderItem struct {
	ID               uint64          `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OrderID          uint64          `json:"orderId" gorm:"not null;index"`
	ProductVariantID uint64          `json:"productVariantId" gorm:"not null;index"`
	Variant          *ProductVariant `json:"variant,omitempty" gorm:"foreignKey:ProductVariantID"`
	Quantity         int             `json:"quantity" gorm:"not null"`
	UnitPrice        float64         `json:"unitPrice" gorm:"not null"`
	TotalPrice       float64         `json:"totalPrice" gorm:"not null"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Order is a purchase placed by a customer.
type Order struct {
	ID              uint64      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CustomerID      uint64      `json:"customerId" gorm:"not null;index"`
	Customer        *Customer   `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount     float64     `json:"totalAmount" gorm:"not null"`
	Status          OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentMethod   string      `json:"paymentMethod" gorm:"type:varchar(30)"`
	ShippingAddress string      `json:"shippingAddress" gorm:"type:varchar(500)"`
	Notes           string      `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

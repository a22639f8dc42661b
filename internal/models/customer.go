package models

import "time"

// Customer is a storefront shopper account.
type Customer struct {
	ID          uint64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	FirstName   string     `json:"firstName" gorm:"type:varchar(100);not null"`
	LastName    string     `json:"lastName" gorm:"type:varchar(100);not null"`
	Email       string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Phone       string     `json:"phone" gorm:"type:varchar(50);index"`
	Password    string     `json:"-" gorm:"type:varchar(255);not null"`
	IsActive    bool       `json:"isActive" gorm:"not null;index"`
	Address     string     `json:"address,omitempty" gorm:"type:varchar(255)"`
	City        string     `json:"city,omitempty" gorm:"type:varchar(100)"`
	ZipCode     string     `json:"zipCode,omitempty" gorm:"type:varchar(20)"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

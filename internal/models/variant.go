package models

import "time"

// ProductVariant is a purchasable SKU: one product in one color and one size.
type ProductVariant struct {
	ID        uint64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProductID uint64     `json:"productId" gorm:"not null;uniqueIndex:idx_variant_triple;index:idx_variant_product_active"`
	ColorID   uint64     `json:"colorId" gorm:"not null;uniqueIndex:idx_variant_triple"`
	SizeID    uint64     `json:"sizeId" gorm:"not null;uniqueIndex:idx_variant_triple"`
	Stock     int        `json:"stock" gorm:"not null;default:0"`
	Images    StringList `json:"images"`
	IsActive  bool       `json:"isActive" gorm:"not null;index:idx_variant_product_active"`
	Color     *Color     `json:"color,omitempty" gorm:"foreignKey:ColorID"`
	Size      *Size      `json:"size,omitempty" gorm:"foreignKey:SizeID"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TableName keeps the table name aligned with the resource name.
func (ProductVariant) TableName() string {
	return "product_variants"
}

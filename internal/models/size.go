package models

import "time"

// SizeCategory groups sizes that are ordered together.
type SizeCategory string

const (
	SizeCategoryShoe     SizeCategory = "shoe"
	SizeCategoryClothing SizeCategory = "clothing"
	SizeCategoryGeneral  SizeCategory = "general"
)

// Valid reports whether c is a known size category.
func (c SizeCategory) Valid() bool {
	switch c {
	case SizeCategoryShoe, SizeCategoryClothing, SizeCategoryGeneral:
		return true
	}
	return false
}

// Size is a size label such as "42" or "M". Names are unique per category.
type Size struct {
	ID          uint64       `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name        string       `json:"name" gorm:"type:varchar(50);not null;index"`
	Description string       `json:"description" gorm:"type:varchar(255)"`
	Category    SizeCategory `json:"category" gorm:"type:varchar(20);not null;default:'general';index"`
	SortOrder   int          `json:"sortOrder"`
	IsActive    bool         `json:"isActive" gorm:"not null;index"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

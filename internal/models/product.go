package models

import (
	"fmt"
	"time"
)

// ProductStatus is the publication state of a product.
type ProductStatus string

const (
	StatusDraft     ProductStatus = "draft"
	StatusPublished ProductStatus = "published"
	StatusArchived  ProductStatus = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s ProductStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Product represents a catalog entry. Variants reference it by ID.
type Product struct {
	ID             uint64        `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name           string        `json:"name" gorm:"type:varchar(200);not null;index:idx_products_name_brand"`
	Brand          string        `json:"brand" gorm:"type:varchar(100);not null;index:idx_products_name_brand"`
	Price          float64       `json:"price" gorm:"not null"`
	Description    string        `json:"description" gorm:"type:text"`
	Category       string        `json:"category" gorm:"type:varchar(100);index"`
	Images         StringList    `json:"images"`
	Tags           StringList    `json:"tags"`
	Rating         float64       `json:"rating" gorm:"default:0"`
	ReviewCount    int           `json:"reviewCount" gorm:"default:0"`
	Status         ProductStatus `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	IsActive       bool          `json:"isActive" gorm:"not null;index"`
	PublishedAt    *time.Time    `json:"publishedAt,omitempty"`
	CreatedBy      string        `json:"createdBy,omitempty" gorm:"type:varchar(100)"`
	LastModifiedBy string        `json:"lastModifiedBy,omitempty" gorm:"type:varchar(100)"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// Visible reports whether the product may be shown to storefront visitors.
func (p *Product) Visible() bool {
	return p.IsActive && p.Status == StatusPublished
}

// Publish moves the product into the published state and stamps PublishedAt.
// Archived products cannot be published again.
func (p *Product) Publish(now time.Time) error {
	if p.Status == StatusArchived {
		return fmt.Errorf("%w: product %d is archived", ErrInvalidTransition, p.ID)
	}
	p.Status = StatusPublished
	p.PublishedAt = &now
	return nil
}

// Unpublish returns the product to draft. PublishedAt is left untouched.
func (p *Product) Unpublish() error {
	if p.Status == StatusArchived {
		return fmt.Errorf("%w: product %d is archived", ErrInvalidTransition, p.ID)
	}
	p.Status = StatusDraft
	return nil
}

// Archive soft-deletes the product. There is no way back.
func (p *Product) Archive() {
	p.Status = StatusArchived
	p.IsActive = false
}

// TransitionTo applies the transition that leads to target.
func (p *Product) TransitionTo(target ProductStatus, now time.Time) error {
	switch target {
	case StatusPublished:
		if p.Status == StatusPublished {
			return nil
		}
		return p.Publish(now)
	case StatusDraft:
		return p.Unpublish()
	case StatusArchived:
		p.Archive()
		return nil
	}
	return fmt.Errorf("%w: unknown status %q", ErrValidation, target)
}

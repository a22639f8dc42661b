package models

import "time"

// Color is a colorway a product can be sold in.
type Color struct {
	ID           uint64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name         string     `json:"name" gorm:"type:varchar(100);not null;index"`
	HexCode      string     `json:"hexCode" gorm:"type:varchar(7);not null"`
	Images       StringList `json:"images"`
	PrimaryImage string     `json:"primaryImage,omitempty" gorm:"type:varchar(500)"`
	Tags         StringList `json:"tags"`
	IsActive     bool       `json:"isActive" gorm:"not null;index"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// AddImage appends url unless it is already present. The first image added
// to a color without a primary image becomes the primary image.
func (c *Color) AddImage(url string) bool {
	if Contains(c.Images, url) {
		return false
	}
	c.Images = append(c.Images, url)
	if c.PrimaryImage == "" {
		c.PrimaryImage = url
	}
	return true
}

// RemoveImage drops url from the images. When url was the primary image the
// first remaining image takes its place, or the field is cleared.
func (c *Color) RemoveImage(url string) {
	c.Images = Without(c.Images, url)
	if c.PrimaryImage == url {
		c.PrimaryImage = ""
		if len(c.Images) > 0 {
			c.PrimaryImage = c.Images[0]
		}
	}
}

// NormalizePrimaryImage keeps PrimaryImage pointing at a member of Images.
func (c *Color) NormalizePrimaryImage() {
	if c.PrimaryImage != "" && Contains(c.Images, c.PrimaryImage) {
		return
	}
	c.PrimaryImage = ""
	if len(c.Images) > 0 {
		c.PrimaryImage = c.Images[0]
	}
}

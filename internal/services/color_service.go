package services

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CreateColorInput is the payload accepted when creating a color.
type CreateColorInput struct {
	Name         string   `json:"name" validate:"required,max=100"`
	HexCode      string   `json:"hexCode" validate:"required,hexcode"`
	Images       []string `json:"images" validate:"omitempty,dive,required"`
	PrimaryImage string   `json:"primaryImage"`
	Tags         []string `json:"tags" validate:"omitempty,dive,required"`
}

// UpdateColorInput is a partial update. Nil fields are left unchanged.
type UpdateColorInput struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=100"`
	HexCode      *string  `json:"hexCode" validate:"omitempty,hexcode"`
	Images       []string `json:"images" validate:"omitempty,dive,required"`
	PrimaryImage *string  `json:"primaryImage"`
	Tags         []string `json:"tags" validate:"omitempty,dive,required"`
}

// ColorService handles business logic related to colors.
type ColorService struct {
	colors    repositories.ColorRepository
	sequences repositories.SequenceRepository
	hooks     Hooks
}

// NewColorService creates a new ColorService.
func NewColorService(colors repositories.ColorRepository, sequences repositories.SequenceRepository, hooks Hooks) *ColorService {
	return &ColorService{
		colors:    colors,
		sequences: sequences,
		hooks:     hooks,
	}
}

func (s *ColorService) ensureNameFree(ctx context.Context, name string, excludeID uint64) error {
	exists, err := s.colors.ExistsActiveName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: color %q already exists", models.ErrConflict, name)
	}
	return nil
}

func checkPrimary(color *models.Color) error {
	if color.PrimaryImage != "" && !models.Contains(color.Images, color.PrimaryImage) {
		return fmt.Errorf("%w: primaryImage must be one of the images", models.ErrValidation)
	}
	color.NormalizePrimaryImage()
	return nil
}

// FindAll returns the active colors ordered by name.
func (s *ColorService) FindAll(ctx context.Context) ([]models.Color, error) {
	return s.colors.ListActive(ctx)
}

// FindByID returns an active color.
func (s *ColorService) FindByID(ctx context.Context, id uint64) (*models.Color, error) {
	return s.colors.GetActiveByID(ctx, id)
}

// Create adds a color. Names are unique among active colors.
func (s *ColorService) Create(ctx context.Context, actor Actor, in CreateColorInput) (*models.Color, error) {
	if err := s.ensureNameFree(ctx, in.Name, 0); err != nil {
		return nil, err
	}
	color := &models.Color{
		Name:         in.Name,
		HexCode:      in.HexCode,
		Images:       dedupe(in.Images),
		PrimaryImage: in.PrimaryImage,
		Tags:         dedupe(in.Tags),
		IsActive:     true,
	}
	if err := checkPrimary(color); err != nil {
		return nil, err
	}

	id, err := s.sequences.Next(ctx, repositories.SeqColors)
	if err != nil {
		return nil, err
	}
	color.ID = id
	if err := s.colors.Create(ctx, color); err != nil {
		return nil, err
	}
	s.hooks.after(ctx, actor, change{action: "color.create", resource: "color", resourceID: id, detail: color.Name})
	return color, nil
}

// Update applies a partial update. When the images change, the primary image
// is kept if still present, otherwise reassigned to the first image.
func (s *ColorService) Update(ctx context.Context, actor Actor, id uint64, in UpdateColorInput) (*models.Color, error) {
	color, err := s.colors.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && *in.Name != color.Name {
		if err := s.ensureNameFree(ctx, *in.Name, id); err != nil {
			return nil, err
		}
		color.Name = *in.Name
	}
	if in.HexCode != nil {
		color.HexCode = *in.HexCode
	}
	if in.Images != nil {
		color.Images = dedupe(in.Images)
	}
	if in.Tags != nil {
		color.Tags = dedupe(in.Tags)
	}
	if in.PrimaryImage != nil {
		color.PrimaryImage = *in.PrimaryImage
		if err := checkPrimary(color); err != nil {
			return nil, err
		}
	}
	color.NormalizePrimaryImage()

	return s.save(ctx, actor, color, "color.update")
}

// Delete deactivates a color. Existing variants keep referencing it.
func (s *ColorService) Delete(ctx context.Context, actor Actor, id uint64) error {
	color, err := s.colors.GetActiveByID(ctx, id)
	if err != nil {
		return err
	}
	color.IsActive = false
	_, err = s.save(ctx, actor, color, "color.delete")
	return err
}

// AddImage appends url unless already present. The first image becomes the
// primary image.
func (s *ColorService) AddImage(ctx context.Context, actor Actor, id uint64, url string) (*models.Color, error) {
	color, err := s.colors.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !color.AddImage(url) {
		return color, nil
	}
	return s.save(ctx, actor, color, "color.image.add")
}

// RemoveImage drops url. Removing the primary image promotes the first
// remaining image or clears the primary image.
func (s *ColorService) RemoveImage(ctx context.Context, actor Actor, id uint64, url string) (*models.Color, error) {
	color, err := s.colors.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	color.RemoveImage(url)
	return s.save(ctx, actor, color, "color.image.remove")
}

// SetPrimaryImage selects one of the existing images as primary.
func (s *ColorService) SetPrimaryImage(ctx context.Context, actor Actor, id uint64, url string) (*models.Color, error) {
	color, err := s.colors.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.Contains(color.Images, url) {
		return nil, fmt.Errorf("%w: image %q is not attached to color %d", models.ErrNotFound, url, id)
	}
	color.PrimaryImage = url
	return s.save(ctx, actor, color, "color.image.primary")
}

// AddTag adds tag if missing.
func (s *ColorService) AddTag(ctx context.Context, actor Actor, id uint64, tag string) (*models.Color, error) {
	color, err := s.colors.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if models.Contains(color.Tags, tag) {
		return color, nil
	}
	color.Tags = append(color.Tags, tag)
	return s.save(ctx, actor, color, "color.tag.add")
}

// RemoveTag removes tag if present.
func (s *ColorService) RemoveTag(ctx context.Context, actor Actor, id uint64, tag string) (*models.Color, error) {
	color, err := s.colors.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.Contains(color.Tags, tag) {
		return color, nil
	}
	color.Tags = models.StringList(models.Without(color.Tags, tag))
	return s.save(ctx, actor, color, "color.tag.remove")
}

func (s *ColorService) save(ctx context.Context, actor Actor, color *models.Color, action string) (*models.Color, error) {
	if err := s.colors.Update(ctx, color); err != nil {
		return nil, err
	}
	s.hooks.after(ctx, actor, change{action: action, resource: "color", resourceID: color.ID})
	return color, nil
}

// dedupe drops repeated entries, keeping the first occurrence.
func dedupe(list []string) models.StringList {
	out := models.StringList{}
	for _, s := range list {
		if !models.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

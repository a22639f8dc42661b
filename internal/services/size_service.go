package services

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CreateSizeInput is the payload accepted when creating a size.
type CreateSizeInput struct {
	Name        string              `json:"name" validate:"required,max=50"`
	Description string              `json:"description" validate:"max=255"`
	Category    models.SizeCategory `json:"category" validate:"omitempty,oneof=shoe clothing general"`
	SortOrder   *int                `json:"sortOrder" validate:"omitempty,gte=0"`
}

// UpdateSizeInput is a partial update. Nil fields are left unchanged.
type UpdateSizeInput struct {
	Name        *string              `json:"name" validate:"omitempty,min=1,max=50"`
	Description *string              `json:"description" validate:"omitempty,max=255"`
	Category    *models.SizeCategory `json:"category" validate:"omitempty,oneof=shoe clothing general"`
	SortOrder   *int                 `json:"sortOrder" validate:"omitempty,gte=0"`
}

// ReorderItem assigns a new sort order to one size.
type ReorderItem struct {
	ID        uint64 `json:"id" validate:"required"`
	SortOrder int    `json:"sortOrder" validate:"gte=0"`
}

// Reasons a reorder item is skipped.
const (
	SkipNotFound         = "not found"
	SkipCategoryMismatch = "category mismatch"
)

// ReorderSkip reports an item Reorder did not apply.
type ReorderSkip struct {
	ID     uint64 `json:"id"`
	Reason string `json:"reason"`
}

// ReorderResult lists what a reorder changed and what it skipped.
type ReorderResult struct {
	Updated []uint64      `json:"updated"`
	Skipped []ReorderSkip `json:"skipped"`
}

// SizeService handles business logic related to sizes.
type SizeService struct {
	sizes     repositories.SizeRepository
	sequences repositories.SequenceRepository
	hooks     Hooks
}

// NewSizeService creates a new SizeService.
func NewSizeService(sizes repositories.SizeRepository, sequences repositories.SequenceRepository, hooks Hooks) *SizeService {
	return &SizeService{
		sizes:     sizes,
		sequences: sequences,
		hooks:     hooks,
	}
}

func parseCategory(c models.SizeCategory) error {
	if !c.Valid() {
		return fmt.Errorf("%w: unknown size category %q", models.ErrValidation, c)
	}
	return nil
}

func (s *SizeService) ensureNameFree(ctx context.Context, name string, category models.SizeCategory, excludeID uint64) error {
	exists, err := s.sizes.ExistsActiveName(ctx, name, category, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: size %q already exists in category %s", models.ErrConflict, name, category)
	}
	return nil
}

// FindAll returns active sizes ordered by category, sort order and name.
func (s *SizeService) FindAll(ctx context.Context) ([]models.Size, error) {
	return s.sizes.ListActive(ctx, "")
}

// FindByCategory returns the active sizes of one category in sort order.
func (s *SizeService) FindByCategory(ctx context.Context, category models.SizeCategory) ([]models.Size, error) {
	if err := parseCategory(category); err != nil {
		return nil, err
	}
	return s.sizes.ListActive(ctx, category)
}

// FindByID returns an active size.
func (s *SizeService) FindByID(ctx context.Context, id uint64) (*models.Size, error) {
	return s.sizes.GetActiveByID(ctx, id)
}

// Create adds a size. Without an explicit sort order the size goes after the
// last one of its category.
func (s *SizeService) Create(ctx context.Context, actor Actor, in CreateSizeInput) (*models.Size, error) {
	category := in.Category
	if category == "" {
		category = models.SizeCategoryGeneral
	}
	if err := parseCategory(category); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, in.Name, category, 0); err != nil {
		return nil, err
	}

	sortOrder := 1
	if in.SortOrder != nil {
		sortOrder = *in.SortOrder
	} else {
		highest, ok, err := s.sizes.MaxSortOrder(ctx, category)
		if err != nil {
			return nil, err
		}
		if ok {
			sortOrder = highest + 1
		}
	}

	id, err := s.sequences.Next(ctx, repositories.SeqSizes)
	if err != nil {
		return nil, err
	}
	size := &models.Size{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Category:    category,
		SortOrder:   sortOrder,
		IsActive:    true,
	}
	if err := s.sizes.Create(ctx, size); err != nil {
		return nil, err
	}
	s.hooks.after(ctx, actor, change{action: "size.create", resource: "size", resourceID: id, detail: string(category) + "/" + size.Name})
	return size, nil
}

// Update applies a partial update. Name uniqueness is checked against the
// resulting category.
func (s *SizeService) Update(ctx context.Context, actor Actor, id uint64, in UpdateSizeInput) (*models.Size, error) {
	size, err := s.sizes.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, category := size.Name, size.Category
	if in.Name != nil {
		name = *in.Name
	}
	if in.Category != nil {
		category = *in.Category
		if err := parseCategory(category); err != nil {
			return nil, err
		}
	}
	if name != size.Name || category != size.Category {
		if err := s.ensureNameFree(ctx, name, category, id); err != nil {
			return nil, err
		}
	}
	size.Name, size.Category = name, category
	if in.Description != nil {
		size.Description = *in.Description
	}
	if in.SortOrder != nil {
		size.SortOrder = *in.SortOrder
	}

	if err := s.sizes.Update(ctx, size); err != nil {
		return nil, err
	}
	s.hooks.after(ctx, actor, change{action: "size.update", resource: "size", resourceID: id})
	return size, nil
}

// Delete deactivates a size.
func (s *SizeService) Delete(ctx context.Context, actor Actor, id uint64) error {
	size, err := s.sizes.GetActiveByID(ctx, id)
	if err != nil {
		return err
	}
	size.IsActive = false
	if err := s.sizes.Update(ctx, size); err != nil {
		return err
	}
	s.hooks.after(ctx, actor, change{action: "size.delete", resource: "size", resourceID: id})
	return nil
}

// Reorder applies new sort orders to sizes of category. Items naming a
// missing size or a size of another category are not applied; they are
// reported in the result and logged.
func (s *SizeService) Reorder(ctx context.Context, actor Actor, category models.SizeCategory, items []ReorderItem) (*ReorderResult, error) {
	if err := parseCategory(category); err != nil {
		return nil, err
	}

	result := &ReorderResult{Updated: []uint64{}, Skipped: []ReorderSkip{}}
	for _, item := range items {
		size, err := s.sizes.GetActiveByID(ctx, item.ID)
		if errors.Is(err, models.ErrNotFound) {
			result.skip(category, item.ID, SkipNotFound)
			continue
		}
		if err != nil {
			return nil, err
		}
		if size.Category != category {
			result.skip(category, item.ID, SkipCategoryMismatch)
			continue
		}
		size.SortOrder = item.SortOrder
		if err := s.sizes.Update(ctx, size); err != nil {
			return nil, err
		}
		result.Updated = append(result.Updated, item.ID)
	}

	s.hooks.after(ctx, actor, change{
		action: "size.reorder", resource: "size",
		detail: fmt.Sprintf("%s: %d updated, %d skipped", category, len(result.Updated), len(result.Skipped)),
	})
	return result, nil
}

func (r *ReorderResult) skip(category models.SizeCategory, id uint64, reason string) {
	log.WithFields(log.Fields{"size_id": id, "category": category, "reason": reason}).Warn("Reorder skipped size")
	r.Skipped = append(r.Skipped, ReorderSkip{ID: id, Reason: reason})
}

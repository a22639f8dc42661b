package services

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CreateVariantInput adds a color/size combination to a product.
type CreateVariantInput struct {
	ColorID uint64   `json:"colorId" validate:"required"`
	SizeID  uint64   `json:"sizeId" validate:"required"`
	Stock   int      `json:"stock" validate:"gte=0"`
	Images  []string `json:"images" validate:"omitempty,dive,required"`
}

// UpdateVariantInput is a partial update. Nil fields are left unchanged.
type UpdateVariantInput struct {
	Stock    *int     `json:"stock" validate:"omitempty,gte=0"`
	Images   []string `json:"images" validate:"omitempty,dive,required"`
	IsActive *bool    `json:"isActive"`
}

// AdjustStockInput moves stock up or down by Delta.
type AdjustStockInput struct {
	Delta int `json:"delta" validate:"required"`
}

// VariantService manages the SKUs of a product.
type VariantService struct {
	products  repositories.ProductRepository
	colors    repositories.ColorRepository
	sizes     repositories.SizeRepository
	variants  repositories.VariantRepository
	sequences repositories.SequenceRepository
	hooks     Hooks
}

// NewVariantService creates a new VariantService.
func NewVariantService(
	products repositories.ProductRepository,
	colors repositories.ColorRepository,
	sizes repositories.SizeRepository,
	variants repositories.VariantRepository,
	sequences repositories.SequenceRepository,
	hooks Hooks,
) *VariantService {
	return &VariantService{
		products:  products,
		colors:    colors,
		sizes:     sizes,
		variants:  variants,
		sequences: sequences,
		hooks:     hooks,
	}
}

// Create adds a variant. There is at most one variant per product, color
// and size, whether or not the existing one is still active.
func (s *VariantService) Create(ctx context.Context, actor Actor, productID uint64, in CreateVariantInput) (*models.ProductVariant, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Status == models.StatusArchived || !product.IsActive {
		return nil, fmt.Errorf("%w: product %d is archived", models.ErrConflict, productID)
	}
	if _, err := s.colors.GetActiveByID(ctx, in.ColorID); err != nil {
		return nil, err
	}
	if _, err := s.sizes.GetActiveByID(ctx, in.SizeID); err != nil {
		return nil, err
	}

	existing, err := s.variants.FindByTriple(ctx, productID, in.ColorID, in.SizeID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: variant %d already covers color %d and size %d",
			models.ErrConflict, existing.ID, in.ColorID, in.SizeID)
	case !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	id, err := s.sequences.Next(ctx, repositories.SeqVariants)
	if err != nil {
		return nil, err
	}
	variant := &models.ProductVariant{
		ID:        id,
		ProductID: productID,
		ColorID:   in.ColorID,
		SizeID:    in.SizeID,
		Stock:     in.Stock,
		Images:    orEmpty(in.Images),
		IsActive:  true,
	}
	if err := s.variants.Create(ctx, variant); err != nil {
		return nil, err
	}

	s.hooks.after(ctx, actor, change{
		action: "variant.create", resource: "variant", resourceID: id,
		detail: fmt.Sprintf("product %d", productID),
	})
	return s.variants.GetByID(ctx, id)
}

func (s *VariantService) owned(ctx context.Context, productID, variantID uint64) (*models.ProductVariant, error) {
	variant, err := s.variants.GetByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if variant.ProductID != productID {
		return nil, fmt.Errorf("%w: variant %d of product %d", models.ErrNotFound, variantID, productID)
	}
	return variant, nil
}

// Update changes stock, images or the active flag of a variant.
func (s *VariantService) Update(ctx context.Context, actor Actor, productID, variantID uint64, in UpdateVariantInput) (*models.ProductVariant, error) {
	variant, err := s.owned(ctx, productID, variantID)
	if err != nil {
		return nil, err
	}
	before := variant.Stock
	if in.Stock != nil {
		variant.Stock = *in.Stock
	}
	if in.Images != nil {
		variant.Images = orEmpty(in.Images)
	}
	if in.IsActive != nil {
		variant.IsActive = *in.IsActive
	}
	if err := s.variants.Update(ctx, variant); err != nil {
		return nil, err
	}

	c := change{action: "variant.update", resource: "variant", resourceID: variantID}
	if variant.Stock != before {
		c.event = EventVariantStock
		c.data = stockChange(variant, variant.Stock-before)
	}
	s.hooks.after(ctx, actor, c)
	return variant, nil
}

// Delete deactivates a variant.
func (s *VariantService) Delete(ctx context.Context, actor Actor, productID, variantID uint64) error {
	variant, err := s.owned(ctx, productID, variantID)
	if err != nil {
		return err
	}
	variant.IsActive = false
	if err := s.variants.Update(ctx, variant); err != nil {
		return err
	}
	s.hooks.after(ctx, actor, change{action: "variant.delete", resource: "variant", resourceID: variantID})
	return nil
}

// AdjustStock adds delta to the stock in one atomic statement. It fails with
// a conflict instead of letting stock go negative.
func (s *VariantService) AdjustStock(ctx context.Context, actor Actor, productID, variantID uint64, delta int) (*models.ProductVariant, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: delta must not be zero", models.ErrValidation)
	}
	if _, err := s.owned(ctx, productID, variantID); err != nil {
		return nil, err
	}
	variant, err := s.variants.AdjustStock(ctx, variantID, delta)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"variant_id": variantID, "delta": delta, "stock": variant.Stock}).Info("Stock adjusted")
	s.hooks.after(ctx, actor, change{
		action: "variant.stock", resource: "variant", resourceID: variantID,
		event: EventVariantStock, data: stockChange(variant, delta),
		detail: fmt.Sprintf("delta %d", delta),
	})
	return variant, nil
}

type stockChanged struct {
	VariantID uint64 `json:"variantId"`
	ProductID uint64 `json:"productId"`
	Stock     int    `json:"stock"`
	Delta     int    `json:"delta"`
}

func stockChange(v *models.ProductVariant, delta int) stockChanged {
	return stockChanged{VariantID: v.ID, ProductID: v.ProductID, Stock: v.Stock, Delta: delta}
}

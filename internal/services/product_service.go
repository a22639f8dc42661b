package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"storefront/internal/cache"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CreateProductInput is the payload accepted when creating a product.
type CreateProductInput struct {
	Name        string               `json:"name" validate:"required,max=200"`
	Brand       string               `json:"brand" validate:"required,max=100"`
	Price       float64              `json:"price" validate:"gte=0"`
	Description string               `json:"description" validate:"max=5000"`
	Category    string               `json:"category" validate:"max=100"`
	Images      []string             `json:"images" validate:"omitempty,dive,required"`
	Tags        []string             `json:"tags" validate:"omitempty,dive,required"`
	Rating      float64              `json:"rating" validate:"gte=0,lte=5"`
	ReviewCount int                  `json:"reviewCount" validate:"gte=0"`
	Status      models.ProductStatus `json:"status" validate:"omitempty,oneof=draft published"`
}

// UpdateProductInput is a partial update. Nil fields are left unchanged.
type UpdateProductInput struct {
	Name        *string               `json:"name" validate:"omitempty,min=1,max=200"`
	Brand       *string               `json:"brand" validate:"omitempty,min=1,max=100"`
	Price       *float64              `json:"price" validate:"omitempty,gte=0"`
	Description *string               `json:"description" validate:"omitempty,max=5000"`
	Category    *string               `json:"category" validate:"omitempty,max=100"`
	Images      []string              `json:"images" validate:"omitempty,dive,required"`
	Tags        []string              `json:"tags" validate:"omitempty,dive,required"`
	Rating      *float64              `json:"rating" validate:"omitempty,gte=0,lte=5"`
	ReviewCount *int                  `json:"reviewCount" validate:"omitempty,gte=0"`
	Status      *models.ProductStatus `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	products  repositories.ProductRepository
	variants  repositories.VariantRepository
	sequences repositories.SequenceRepository
	hooks     Hooks
	now       func() time.Time
}

// NewProductService creates a new ProductService.
func NewProductService(products repositories.ProductRepository, variants repositories.VariantRepository, sequences repositories.SequenceRepository, hooks Hooks) *ProductService {
	return &ProductService{
		products:  products,
		variants:  variants,
		sequences: sequences,
		hooks:     hooks,
		now:       time.Now,
	}
}

func orEmpty(list []string) models.StringList {
	if list == nil {
		return models.StringList{}
	}
	return models.StringList(list)
}

// Create adds a product. Products start as drafts unless the input asks for
// published, in which case publishedAt is stamped.
func (s *ProductService) Create(ctx context.Context, actor Actor, in CreateProductInput) (*models.Product, error) {
	status := in.Status
	if status == "" {
		status = models.StatusDraft
	}
	if status != models.StatusDraft && status != models.StatusPublished {
		return nil, fmt.Errorf("%w: a new product must be draft or published", models.ErrValidation)
	}

	exists, err := s.products.ExistsActiveNameBrand(ctx, in.Name, in.Brand, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: product %q already exists for brand %q", models.ErrConflict, in.Name, in.Brand)
	}

	id, err := s.sequences.Next(ctx, repositories.SeqProducts)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:             id,
		Name:           in.Name,
		Brand:          in.Brand,
		Price:          in.Price,
		Description:    in.Description,
		Category:       in.Category,
		Images:         orEmpty(in.Images),
		Tags:           orEmpty(in.Tags),
		Rating:         in.Rating,
		ReviewCount:    in.ReviewCount,
		Status:         models.StatusDraft,
		IsActive:       true,
		CreatedBy:      actor.Username,
		LastModifiedBy: actor.Username,
	}
	if status == models.StatusPublished {
		if err := product.Publish(s.now()); err != nil {
			return nil, err
		}
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"product_id": product.ID, "admin": actor.Username}).Info("Product created")
	s.hooks.after(ctx, actor, change{
		action: "product.create", resource: "product", resourceID: product.ID,
		event: EventProductCreated, data: product, invalidate: true,
	})
	return product, nil
}

// Update applies a partial update. A status in the input goes through the
// product state machine; archiving this way cascades like Delete.
func (s *ProductService) Update(ctx context.Context, actor Actor, id uint64, in UpdateProductInput) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, brand := product.Name, product.Brand
	if in.Name != nil {
		name = *in.Name
	}
	if in.Brand != nil {
		brand = *in.Brand
	}
	if name != product.Name || brand != product.Brand {
		exists, err := s.products.ExistsActiveNameBrand(ctx, name, brand, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: product %q already exists for brand %q", models.ErrConflict, name, brand)
		}
	}

	product.Name, product.Brand = name, brand
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.Images != nil {
		product.Images = orEmpty(in.Images)
	}
	if in.Tags != nil {
		product.Tags = orEmpty(in.Tags)
	}
	if in.Rating != nil {
		product.Rating = *in.Rating
	}
	if in.ReviewCount != nil {
		product.ReviewCount = *in.ReviewCount
	}

	event := EventProductUpdated
	previous := product.Status
	if in.Status != nil && *in.Status != previous {
		if previous == models.StatusArchived {
			return nil, fmt.Errorf("%w: product %d is archived", models.ErrInvalidTransition, id)
		}
		if err := product.TransitionTo(*in.Status, s.now()); err != nil {
			return nil, err
		}
		event = statusEvent(product.Status)
	}
	product.LastModifiedBy = actor.Username

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	if product.Status == models.StatusArchived && previous != models.StatusArchived {
		if err := s.deactivateVariants(ctx, id); err != nil {
			return nil, err
		}
	}

	s.hooks.after(ctx, actor, change{
		action: "product.update", resource: "product", resourceID: id,
		event: event, data: product, invalidate: true,
	})
	return product, nil
}

func statusEvent(status models.ProductStatus) string {
	switch status {
	case models.StatusPublished:
		return EventProductPublished
	case models.StatusArchived:
		return EventProductArchived
	default:
		return EventProductUnpublished
	}
}

func (s *ProductService) deactivateVariants(ctx context.Context, productID uint64) error {
	n, err := s.variants.DeactivateByProduct(ctx, productID)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"product_id": productID, "variants": n}).Info("Deactivated variants of archived product")
	return nil
}

// Delete archives the product and deactivates all of its variants. Rows are
// never removed.
func (s *ProductService) Delete(ctx context.Context, actor Actor, id uint64) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Archive()
	product.LastModifiedBy = actor.Username
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	if err := s.deactivateVariants(ctx, id); err != nil {
		return nil, err
	}

	s.hooks.after(ctx, actor, change{
		action: "product.delete", resource: "product", resourceID: id,
		event: EventProductArchived, data: product, invalidate: true,
	})
	return product, nil
}

// Publish makes the product visible on the storefront and stamps publishedAt.
func (s *ProductService) Publish(ctx context.Context, actor Actor, id uint64) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Publish(s.now()); err != nil {
		return nil, err
	}
	product.LastModifiedBy = actor.Username
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	s.hooks.after(ctx, actor, change{
		action: "product.publish", resource: "product", resourceID: id,
		event: EventProductPublished, data: product, invalidate: true,
	})
	return product, nil
}

// Unpublish returns the product to draft. publishedAt is kept.
func (s *ProductService) Unpublish(ctx context.Context, actor Actor, id uint64) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Unpublish(); err != nil {
		return nil, err
	}
	product.LastModifiedBy = actor.Username
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	s.hooks.after(ctx, actor, change{
		action: "product.unpublish", resource: "product", resourceID: id,
		event: EventProductUnpublished, data: product, invalidate: true,
	})
	return product, nil
}

// FindAll returns the storefront-visible products.
func (s *ProductService) FindAll(ctx context.Context) ([]models.Product, error) {
	return cached(ctx, s.hooks.Cache, cache.KeyProducts, func() ([]models.Product, error) {
		return s.products.List(ctx, repositories.ProductFilter{VisibleOnly: true})
	})
}

// FindByBrand returns the visible products of one brand (exact match).
func (s *ProductService) FindByBrand(ctx context.Context, brand string) ([]models.Product, error) {
	return cached(ctx, s.hooks.Cache, cache.BrandProductsKey(brand), func() ([]models.Product, error) {
		return s.products.List(ctx, repositories.ProductFilter{VisibleOnly: true, Brand: brand})
	})
}

// Search matches term case-insensitively against name, description and
// brand of visible products. A blank term lists everything visible.
func (s *ProductService) Search(ctx context.Context, term string) ([]models.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.FindAll(ctx)
	}
	return s.products.List(ctx, repositories.ProductFilter{VisibleOnly: true, Search: term})
}

// FindByID returns a product only if it is visible on the storefront.
func (s *ProductService) FindByID(ctx context.Context, id uint64) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.Visible() {
		return nil, fmt.Errorf("%w: product with id %d", models.ErrNotFound, id)
	}
	return product, nil
}

// FindAllForAdmin returns every product, drafts and archived ones included,
// newest first.
func (s *ProductService) FindAllForAdmin(ctx context.Context) ([]models.Product, error) {
	return s.products.List(ctx, repositories.ProductFilter{})
}

// FindByIDForAdmin returns a product in any state.
func (s *ProductService) FindByIDForAdmin(ctx context.Context, id uint64) (*models.Product, error) {
	return s.products.GetByID(ctx, id)
}

// GetProductVariants returns the active variants of a visible product with
// color and size joined in.
func (s *ProductService) GetProductVariants(ctx context.Context, id uint64) ([]models.ProductVariant, error) {
	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.variants.ListByProduct(ctx, id, true)
}

// GetProductVariantsForAdmin returns every variant of a product in any state.
func (s *ProductService) GetProductVariantsForAdmin(ctx context.Context, id uint64) ([]models.ProductVariant, error) {
	if _, err := s.products.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.variants.ListByProduct(ctx, id, false)
}

// GetProductColors returns the distinct active colors offered by the active
// variants of a visible product, in variant order.
func (s *ProductService) GetProductColors(ctx context.Context, id uint64) ([]models.Color, error) {
	variants, err := s.GetProductVariants(ctx, id)
	if err != nil {
		return nil, err
	}
	colors := []models.Color{}
	seen := make(map[uint64]bool)
	for _, v := range variants {
		if v.Color == nil || !v.Color.IsActive || seen[v.ColorID] {
			continue
		}
		seen[v.ColorID] = true
		colors = append(colors, *v.Color)
	}
	return colors, nil
}

// GetAllBrands returns the sorted distinct brands of visible products.
func (s *ProductService) GetAllBrands(ctx context.Context) ([]string, error) {
	return cached(ctx, s.hooks.Cache, cache.KeyBrands, func() ([]string, error) {
		return s.products.DistinctVisible(ctx, "brand")
	})
}

// GetAllCategories returns the sorted distinct categories of visible products.
func (s *ProductService) GetAllCategories(ctx context.Context) ([]string, error) {
	return cached(ctx, s.hooks.Cache, cache.KeyCategories, func() ([]string, error) {
		return s.products.DistinctVisible(ctx, "category")
	})
}

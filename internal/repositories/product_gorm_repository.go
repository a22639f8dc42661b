package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func visible(q *gorm.DB) *gorm.DB {
	return q.Where("is_active = ? AND status = ?", true, models.StatusPublished)
}

// likePattern escapes LIKE wildcards so the query matches as a plain substring.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

// Create inserts a product. The caller assigns the id.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update saves every column of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(product).Select("*").Omit(clause.Associations, "created_at").Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("product", product.ID)
	}
	return nil
}

// GetByID retrieves a single product by its id regardless of its state.
func (r *GORMProductRepository) GetByID(ctx context.Context, id uint64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("product", id)
		}
		return nil, fmt.Errorf("failed to get product by id %d: %w", id, err)
	}
	return &product, nil
}

// List returns the products matching filter. Storefront listings are ordered
// by id, admin listings newest first.
func (r *GORMProductRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if filter.VisibleOnly {
		q = visible(q).Order("id ASC")
	} else {
		q = q.Order("created_at DESC").Order("id DESC")
	}
	if filter.Brand != "" {
		q = q.Where("brand = ?", filter.Brand)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(brand) LIKE ? ESCAPE '\')`, p, p, p)
	}

	products := make([]models.Product, 0)
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ExistsActiveNameBrand reports whether another active product already uses
// the (name, brand) pair.
func (r *GORMProductRepository) ExistsActiveNameBrand(ctx context.Context, name, brand string, excludeID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("name = ? AND brand = ? AND is_active = ? AND id <> ?", name, brand, true, excludeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check product name: %w", err)
	}
	return count > 0, nil
}

// DistinctVisible returns the sorted distinct non-empty values of column over
// storefront-visible products.
func (r *GORMProductRepository) DistinctVisible(ctx context.Context, column string) ([]string, error) {
	if column != "brand" && column != "category" {
		return nil, fmt.Errorf("unsupported distinct column %q", column)
	}
	values := make([]string, 0)
	err := visible(r.db.WithContext(ctx).Model(&models.Product{})).
		Where(column+" <> ''").
		Distinct().Pluck(column, &values).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct %s: %w", column, err)
	}
	sort.Strings(values)
	return values, nil
}

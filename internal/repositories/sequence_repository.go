package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/models"
)

// Sequence names. Each one is also the table whose ids it allocates.
const (
	SeqProducts  = "products"
	SeqColors    = "colors"
	SeqSizes     = "sizes"
	SeqVariants  = "product_variants"
	SeqAdmins    = "admins"
	SeqCustomers = "customers"
)

var sequenceTables = map[string]bool{
	SeqProducts:  true,
	SeqColors:    true,
	SeqSizes:     true,
	SeqVariants:  true,
	SeqAdmins:    true,
	SeqCustomers: true,
}

// SequenceRepository hands out strictly increasing numeric ids.
type SequenceRepository interface {
	Next(ctx context.Context, name string) (uint64, error)
}

// GORMSequenceRepository keeps one counter row per sequence.
type GORMSequenceRepository struct {
	db *gorm.DB
}

// NewGORMSequenceRepository creates a new instance of GORMSequenceRepository.
func NewGORMSequenceRepository(db *gorm.DB) *GORMSequenceRepository {
	return &GORMSequenceRepository{db: db}
}

// Next increments the named counter and returns the new value. The increment
// and the read happen in one transaction; the row lock taken by the UPDATE
// serializes concurrent callers. A missing counter is seeded from the
// current max(id) of its table so existing rows are never reused.
func (r *GORMSequenceRepository) Next(ctx context.Context, name string) (uint64, error) {
	if !sequenceTables[name] {
		return 0, fmt.Errorf("unknown sequence %q", name)
	}

	var next uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Sequence{}).Where("name = ?", name).
			UpdateColumn("value", gorm.Expr("value + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var seed uint64
			if err := tx.Table(name).Select("COALESCE(MAX(id), 0)").Scan(&seed).Error; err != nil {
				return err
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.Sequence{Name: name, Value: seed}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Sequence{}).Where("name = ?", name).
				UpdateColumn("value", gorm.Expr("value + ?", 1)).Error; err != nil {
				return err
			}
		}

		var seq models.Sequence
		if err := tx.Where("name = ?", name).First(&seq).Error; err != nil {
			return err
		}
		next = seq.Value
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to allocate id from sequence %s: %w", name, err)
	}
	return next, nil
}

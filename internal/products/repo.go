package products

import (
	"context"
	"errors"

	"github.com/kelechio/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes the product lookups the checkout paths need.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// FindBySlug loads a product with its size/color variants, or nil when
	// no product carries the slug.
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a product repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Sizes").
		Preload("Colors").
		Where("slug = ?", slug).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

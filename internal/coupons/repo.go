package coupons

import (
	"context"
	"errors"

	"github.com/kelechio/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository owns coupon lookups.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// FindByCode returns the coupon carrying code, or nil when unknown.
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

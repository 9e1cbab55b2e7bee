package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the sellable listing. Only the fields the checkout and
// reconciliation paths read are modelled; catalog concerns (images, reviews,
// categories) live with the catalog service.
type Product struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name         string          `gorm:"column:name;size:100;not null"`
	Slug         string          `gorm:"column:slug;uniqueIndex;not null"`
	Desc         string          `gorm:"column:desc;not null"`
	PriceOld     decimal.Decimal `gorm:"column:price_old;type:numeric(10,2);not null"`
	PriceCurrent decimal.Decimal `gorm:"column:price_current;type:numeric(10,2);not null"`
	InStock      int             `gorm:"column:in_stock;not null;default:5"`
	Sizes        []Size          `gorm:"many2many:product_sizes"`
	Colors       []Color         `gorm:"many2many:product_colors"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// HasSize reports whether value is one of the product's size variants.
func (p *Product) HasSize(value string) bool {
	for _, s := range p.Sizes {
		if s.Value == value {
			return true
		}
	}
	return false
}

// HasColor reports whether value is one of the product's color variants.
func (p *Product) HasColor(value string) bool {
	for _, c := range p.Colors {
		if c.Value == value {
			return true
		}
	}
	return false
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem is a single order line. A nil OrderID marks the line as cart
// state, mutable through the toggle upsert; once OrderID is set the line is
// order history and its quantity and unit price are frozen. UnitPrice is
// snapshotted from the product at assembly time and stays nil while the line
// is in the cart.
//
// Cart uniqueness on (user|guest, product, size, color) for unattached lines
// is enforced by partial indexes in the migrations; sqlite-backed tests rely
// on the repository upsert instead.
type OrderItem struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID    *uuid.UUID       `gorm:"column:user_id;type:uuid;index"`
	GuestID   *uuid.UUID       `gorm:"column:guest_id;type:uuid;index"`
	OrderID   *uuid.UUID       `gorm:"column:order_id;type:uuid;index"`
	ProductID uuid.UUID        `gorm:"column:product_id;type:uuid;not null"`
	Product   *Product         `gorm:"foreignKey:ProductID"`
	Quantity  int              `gorm:"column:quantity;not null;default:1"`
	Size      *string          `gorm:"column:size;size:5"`
	Color     *string          `gorm:"column:color;size:20"`
	UnitPrice *decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2)"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *OrderItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Quantity < 1 {
		i.Quantity = 1
	}
	return nil
}

// EffectiveUnitPrice returns the frozen unit price, falling back to the live
// product price for lines still in the cart.
func (i *OrderItem) EffectiveUnitPrice() decimal.Decimal {
	if i.UnitPrice != nil {
		return *i.UnitPrice
	}
	if i.Product != nil {
		return i.Product.PriceCurrent
	}
	return decimal.Zero
}

// LineTotal is the unit price multiplied by the quantity.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.EffectiveUnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Coupon is a percentage discount applied to at most one order per user.
// A nil ExpiryDate means the coupon never expires.
type Coupon struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Code          string     `gorm:"column:code;size:12;uniqueIndex;not null"`
	ExpiryDate    *time.Time `gorm:"column:expiry_date"`
	PercentageOff int        `gorm:"column:percentage_off;not null;default:10"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Expired reports whether the coupon can no longer be applied at ts.
func (c *Coupon) Expired(ts time.Time) bool {
	return c.ExpiryDate != nil && !c.ExpiryDate.After(ts)
}

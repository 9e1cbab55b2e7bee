package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Country is the registry checkout destinations are validated against.
type Country struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	Code      string    `gorm:"column:code;uniqueIndex;not null"`
	PhoneCode string    `gorm:"column:phone_code;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Country) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

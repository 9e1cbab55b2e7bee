package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Size is a product size variant value ("S", "M", "41").
type Size struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Value     string    `gorm:"column:value;size:5;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Size) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Color is a product color variant value.
type Color struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Value     string    `gorm:"column:value;size:20;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Color) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

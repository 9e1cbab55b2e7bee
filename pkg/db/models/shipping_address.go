package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShippingAddress is a reusable destination template owned by a user. Orders
// copy its fields by value at assembly time, so edits here never rewrite
// order history.
type ShippingAddress struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	FullName  string    `gorm:"column:full_name;size:500;not null"`
	Email     string    `gorm:"column:email;not null"`
	Phone     string    `gorm:"column:phone;size:20;not null"`
	Address   string    `gorm:"column:address;size:1000;not null"`
	City      string    `gorm:"column:city;size:200;not null"`
	State     string    `gorm:"column:state;size:200;not null"`
	CountryID uuid.UUID `gorm:"column:country_id;type:uuid;not null"`
	Country   *Country  `gorm:"foreignKey:CountryID"`
	Zipcode   int       `gorm:"column:zipcode;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *ShippingAddress) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kelechio/storefront-backend/pkg/enums"
)

// Order is an assembled, immutable-identity order. TxRef is the sole
// correlation key payment gateways see. Shipping fields are copied by value
// from the resolved address; Country holds the resolved name, not a
// reference. The (user_id, coupon_id) unique index is the authoritative
// single-use-per-user coupon guard.
type Order struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	UserID         uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index;uniqueIndex:uniq_user_coupon_order"`
	TxRef          string               `gorm:"column:tx_ref;size:100;uniqueIndex;not null"`
	DeliveryStatus enums.DeliveryStatus `gorm:"column:delivery_status;size:20;not null;default:'PENDING'"`
	PaymentStatus  enums.PaymentStatus  `gorm:"column:payment_status;size:20;not null;default:'PENDING'"`
	PaymentMethod  enums.PaymentMethod  `gorm:"column:payment_method;size:20;not null"`
	CouponID       *uuid.UUID           `gorm:"column:coupon_id;type:uuid;uniqueIndex:uniq_user_coupon_order"`
	Coupon         *Coupon              `gorm:"foreignKey:CouponID"`
	DateDelivered  *time.Time           `gorm:"column:date_delivered"`

	// Shipping snapshot.
	FullName string `gorm:"column:full_name;size:500;not null"`
	Email    string `gorm:"column:email;not null"`
	Phone    string `gorm:"column:phone;size:20;not null"`
	Address  string `gorm:"column:address;size:1000;not null"`
	City     string `gorm:"column:city;size:200;not null"`
	State    string `gorm:"column:state;size:200;not null"`
	Country  string `gorm:"column:country;size:200;not null"`
	Zipcode  int    `gorm:"column:zipcode;not null"`

	Items     []OrderItem `gorm:"foreignKey:OrderID"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

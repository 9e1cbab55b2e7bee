package enums

import "fmt"

// DeliveryStatus tracks fulfilment of a paid order.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "PENDING"
	DeliveryStatusPacking   DeliveryStatus = "PACKING"
	DeliveryStatusShipping  DeliveryStatus = "SHIPPING"
	DeliveryStatusArrived   DeliveryStatus = "ARRIVED"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusPending,
	DeliveryStatusPacking,
	DeliveryStatusShipping,
	DeliveryStatusArrived,
	DeliveryStatusDelivered,
}

// String implements fmt.Stringer.
func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (d DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}

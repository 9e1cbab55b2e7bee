package orders

import (
	"github.com/shopspring/decimal"

	"github.com/kelechio/storefront-backend/pkg/db/models"
)

var oneHundred = decimal.NewFromInt(100)

// Totals is the fee breakdown for a set of order lines.
type Totals struct {
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Total       decimal.Decimal
}

// ComputeTotals recomputes an order's amounts from its lines: subtotal is the
// sum of unit price x quantity, shipping is a flat per-line fee, and an
// attached coupon takes its percentage off the combined amount. Reconciliation
// calls this fresh on every webhook rather than trusting a cached figure.
func ComputeTotals(order *models.Order, feePerItem decimal.Decimal) Totals {
	return ComputeLineTotals(order.Items, order.Coupon, feePerItem)
}

// ComputeLineTotals is ComputeTotals for lines not yet attached to an order.
func ComputeLineTotals(items []models.OrderItem, coupon *models.Coupon, feePerItem decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].LineTotal())
	}

	shipping := feePerItem.Mul(decimal.NewFromInt(int64(len(items))))
	total := subtotal.Add(shipping)
	if coupon != nil && coupon.PercentageOff > 0 {
		discount := total.Mul(decimal.NewFromInt(int64(coupon.PercentageOff))).Div(oneHundred)
		total = total.Sub(discount)
	}

	return Totals{
		Subtotal:    subtotal,
		ShippingFee: shipping,
		Total:       total,
	}
}

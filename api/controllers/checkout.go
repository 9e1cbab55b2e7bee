package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kelechio/storefront-backend/api/middleware"
	"github.com/kelechio/storefront-backend/api/responses"
	"github.com/kelechio/storefront-backend/api/validators"
	checkoutsvc "github.com/kelechio/storefront-backend/internal/checkout"
	"github.com/kelechio/storefront-backend/internal/shipping"
	"github.com/kelechio/storefront-backend/pkg/enums"
	pkgerrors "github.com/kelechio/storefront-backend/pkg/errors"
	"github.com/kelechio/storefront-backend/pkg/logger"
)

type checkoutRequest struct {
	CouponCode    string                 `json:"coupon_code"`
	ShippingID    *uuid.UUID             `json:"shipping_id"`
	Shipping      *shipping.AddressInput `json:"shipping"`
	PaymentMethod string                 `json:"payment_method" validate:"required"`
}

func (r checkoutRequest) toInput() (checkoutsvc.Input, error) {
	if (r.ShippingID != nil) == (r.Shipping != nil) {
		return checkoutsvc.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid checkout payload").
			WithDetails(map[string]string{
				"shipping": "Provide either shipping_id or a shipping address, not both",
			})
	}

	method, err := enums.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		return checkoutsvc.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid checkout payload").
			WithDetails(map[string]string{"payment_method": "is invalid"})
	}

	if r.Shipping != nil {
		if err := validators.ValidateStruct(r.Shipping); err != nil {
			return checkoutsvc.Input{}, err
		}
	}

	return checkoutsvc.Input{
		CouponCode:    r.CouponCode,
		ShippingID:    r.ShippingID,
		Shipping:      r.Shipping,
		PaymentMethod: method,
	}, nil
}

// Checkout assembles the caller's cart into a pending order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Checkout(ctx, middleware.UserIDFromContext(ctx), input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(result.Order, result.Totals))
	}
}

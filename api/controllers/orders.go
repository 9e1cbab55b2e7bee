package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kelechio/storefront-backend/api/middleware"
	"github.com/kelechio/storefront-backend/api/responses"
	ordersvc "github.com/kelechio/storefront-backend/internal/orders"
	"github.com/kelechio/storefront-backend/pkg/db/models"
	"github.com/kelechio/storefront-backend/pkg/enums"
	pkgerrors "github.com/kelechio/storefront-backend/pkg/errors"
	"github.com/kelechio/storefront-backend/pkg/logger"
)

type orderItemResponse struct {
	ID        uuid.UUID           `json:"id"`
	Product   cartProductResponse `json:"product"`
	Quantity  int                 `json:"quantity"`
	Size      *string             `json:"size,omitempty"`
	Color     *string             `json:"color,omitempty"`
	UnitPrice string              `json:"unit_price"`
	LineTotal string              `json:"line_total"`
}

type orderShippingResponse struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
	Zipcode  int    `json:"zipcode"`
}

type orderTotalsResponse struct {
	Subtotal    string `json:"subtotal"`
	ShippingFee string `json:"shipping_fee"`
	Total       string `json:"total"`
}

type orderResponse struct {
	TxRef          string                `json:"tx_ref"`
	PaymentStatus  string                `json:"payment_status"`
	DeliveryStatus string                `json:"delivery_status"`
	PaymentMethod  string                `json:"payment_method"`
	CouponCode     *string               `json:"coupon_code,omitempty"`
	Shipping       orderShippingResponse `json:"shipping"`
	Items          []orderItemResponse   `json:"items"`
	Totals         orderTotalsResponse   `json:"totals"`
}

func newOrderResponse(order *models.Order, totals ordersvc.Totals) orderResponse {
	resp := orderResponse{
		TxRef:          order.TxRef,
		PaymentStatus:  order.PaymentStatus.String(),
		DeliveryStatus: order.DeliveryStatus.String(),
		PaymentMethod:  order.PaymentMethod.String(),
		Shipping: orderShippingResponse{
			FullName: order.FullName,
			Email:    order.Email,
			Phone:    order.Phone,
			Address:  order.Address,
			City:     order.City,
			State:    order.State,
			Country:  order.Country,
			Zipcode:  order.Zipcode,
		},
		Items: make([]orderItemResponse, 0, len(order.Items)),
		Totals: orderTotalsResponse{
			Subtotal:    totals.Subtotal.StringFixed(2),
			ShippingFee: totals.ShippingFee.StringFixed(2),
			Total:       totals.Total.StringFixed(2),
		},
	}
	if order.Coupon != nil {
		code := order.Coupon.Code
		resp.CouponCode = &code
	}
	for i := range order.Items {
		item := &order.Items[i]
		entry := orderItemResponse{
			ID:        item.ID,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
			UnitPrice: item.EffectiveUnitPrice().StringFixed(2),
			LineTotal: item.LineTotal().StringFixed(2),
		}
		if item.Product != nil {
			entry.Product = cartProductResponse{
				Name:  item.Product.Name,
				Slug:  item.Product.Slug,
				Price: item.Product.PriceCurrent.StringFixed(2),
			}
		}
		resp.Items = append(resp.Items, entry)
	}
	return resp
}

func parseOrderFilter(r *http.Request) (ordersvc.ListFilter, error) {
	var filter ordersvc.ListFilter

	if raw := r.URL.Query().Get("payment_status"); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid order filter").
				WithDetails(map[string]string{"payment_status": "is invalid"})
		}
		filter.PaymentStatus = &status
	}
	if raw := r.URL.Query().Get("delivery_status"); raw != "" {
		status, err := enums.ParseDeliveryStatus(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid order filter").
				WithDetails(map[string]string{"delivery_status": "is invalid"})
		}
		filter.DeliveryStatus = &status
	}
	return filter, nil
}

// OrdersList returns the caller's order history, optionally filtered by
// payment or delivery status.
func OrdersList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		filter, err := parseOrderFilter(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		views, err := svc.List(ctx, middleware.UserIDFromContext(ctx), filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(views))
		for _, view := range views {
			out = append(out, newOrderResponse(view.Order, view.Totals))
		}
		responses.WriteSuccess(w, map[string]any{"orders": out})
	}
}

// OrderDetail returns a single order by transaction reference.
func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		view, err := svc.Get(ctx, middleware.UserIDFromContext(ctx), chi.URLParam(r, "txRef"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(view.Order, view.Totals))
	}
}

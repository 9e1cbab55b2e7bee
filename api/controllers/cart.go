package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kelechio/storefront-backend/api/middleware"
	"github.com/kelechio/storefront-backend/api/responses"
	"github.com/kelechio/storefront-backend/api/validators"
	cartsvc "github.com/kelechio/storefront-backend/internal/cart"
	"github.com/kelechio/storefront-backend/pkg/db/models"
	pkgerrors "github.com/kelechio/storefront-backend/pkg/errors"
	"github.com/kelechio/storefront-backend/pkg/logger"
)

type toggleCartRequest struct {
	Slug     string `json:"slug" validate:"required"`
	Quantity *int   `json:"quantity" validate:"required,gte=0"`
	Size     string `json:"size"`
	Color    string `json:"color"`
}

type cartProductResponse struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Price string `json:"price"`
}

type cartLineResponse struct {
	ID        uuid.UUID           `json:"id"`
	Product   cartProductResponse `json:"product"`
	Quantity  int                 `json:"quantity"`
	Size      *string             `json:"size,omitempty"`
	Color     *string             `json:"color,omitempty"`
	LineTotal string              `json:"line_total"`
}

type cartResponse struct {
	Items    []cartLineResponse `json:"items"`
	Subtotal string             `json:"subtotal"`
}

func newCartLineResponse(line *models.OrderItem) cartLineResponse {
	resp := cartLineResponse{
		ID:        line.ID,
		Quantity:  line.Quantity,
		Size:      line.Size,
		Color:     line.Color,
		LineTotal: line.LineTotal().StringFixed(2),
	}
	if line.Product != nil {
		resp.Product = cartProductResponse{
			Name:  line.Product.Name,
			Slug:  line.Product.Slug,
			Price: line.Product.PriceCurrent.StringFixed(2),
		}
	}
	return resp
}

// CartToggle adds, updates or removes a cart line for the caller.
func CartToggle(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload toggleCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		line, outcome, err := svc.Toggle(ctx, middleware.IdentityFromContext(ctx), cartsvc.ToggleInput{
			Slug:     payload.Slug,
			Quantity: *payload.Quantity,
			Size:     payload.Size,
			Color:    payload.Color,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		body := map[string]any{"outcome": string(outcome)}
		if line != nil {
			body["item"] = newCartLineResponse(line)
		}
		responses.WriteSuccess(w, body)
	}
}

// CartFetch returns the caller's cart lines and subtotal.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		lines, err := svc.List(ctx, middleware.IdentityFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp := cartResponse{Items: make([]cartLineResponse, 0, len(lines))}
		subtotal := decimal.Zero
		for i := range lines {
			resp.Items = append(resp.Items, newCartLineResponse(&lines[i]))
			subtotal = subtotal.Add(lines[i].LineTotal())
		}
		resp.Subtotal = subtotal.StringFixed(2)

		responses.WriteSuccess(w, resp)
	}
}

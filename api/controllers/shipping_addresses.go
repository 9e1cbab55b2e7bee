package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kelechio/storefront-backend/api/middleware"
	"github.com/kelechio/storefront-backend/api/responses"
	"github.com/kelechio/storefront-backend/api/validators"
	"github.com/kelechio/storefront-backend/internal/shipping"
	"github.com/kelechio/storefront-backend/pkg/db/models"
	pkgerrors "github.com/kelechio/storefront-backend/pkg/errors"
	"github.com/kelechio/storefront-backend/pkg/logger"
)

type shippingAddressResponse struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Address  string    `json:"address"`
	City     string    `json:"city"`
	State    string    `json:"state"`
	Country  string    `json:"country"`
	Zipcode  int       `json:"zipcode"`
}

func newShippingAddressResponse(address *models.ShippingAddress) shippingAddressResponse {
	resp := shippingAddressResponse{
		ID:       address.ID,
		FullName: address.FullName,
		Email:    address.Email,
		Phone:    address.Phone,
		Address:  address.Address,
		City:     address.City,
		State:    address.State,
		Zipcode:  address.Zipcode,
	}
	if address.Country != nil {
		resp.Country = address.Country.Name
	}
	return resp
}

func addressIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "addressId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address id")
	}
	return id, nil
}

func ShippingAddressList(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		addresses, err := svc.List(ctx, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]shippingAddressResponse, 0, len(addresses))
		for i := range addresses {
			out = append(out, newShippingAddressResponse(&addresses[i]))
		}
		responses.WriteSuccess(w, map[string]any{"shipping_addresses": out})
	}
}

func ShippingAddressDetail(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := addressIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		address, err := svc.Get(ctx, middleware.UserIDFromContext(ctx), id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newShippingAddressResponse(address))
	}
}

func ShippingAddressCreate(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload shipping.AddressInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		address, err := svc.Create(ctx, middleware.UserIDFromContext(ctx), payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newShippingAddressResponse(address))
	}
}

func ShippingAddressUpdate(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := addressIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload shipping.AddressInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		address, err := svc.Update(ctx, middleware.UserIDFromContext(ctx), id, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newShippingAddressResponse(address))
	}
}

func ShippingAddressDelete(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := addressIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, middleware.UserIDFromContext(ctx), id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

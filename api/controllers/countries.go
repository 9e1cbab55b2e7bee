package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kelechio/storefront-backend/api/responses"
	"github.com/kelechio/storefront-backend/internal/shipping"
	pkgerrors "github.com/kelechio/storefront-backend/pkg/errors"
	"github.com/kelechio/storefront-backend/pkg/logger"
)

type countryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	PhoneCode string    `json:"phone_code"`
}

// CountriesList returns the shipping destinations the store serves.
func CountriesList(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping service unavailable"))
			return
		}

		countries, err := svc.Countries(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]countryResponse, 0, len(countries))
		for _, country := range countries {
			out = append(out, countryResponse{
				ID:        country.ID,
				Name:      country.Name,
				Code:      country.Code,
				PhoneCode: country.PhoneCode,
			})
		}
		responses.WriteSuccess(w, map[string]any{"countries": out})
	}
}

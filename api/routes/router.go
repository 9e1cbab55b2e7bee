package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kelechio/storefront-backend/api/controllers"
	webhookcontrollers "github.com/kelechio/storefront-backend/api/controllers/webhooks"
	"github.com/kelechio/storefront-backend/api/middleware"
	cartsvc "github.com/kelechio/storefront-backend/internal/cart"
	checkoutsvc "github.com/kelechio/storefront-backend/internal/checkout"
	ordersvc "github.com/kelechio/storefront-backend/internal/orders"
	"github.com/kelechio/storefront-backend/internal/shipping"
	paypalwebhook "github.com/kelechio/storefront-backend/internal/webhooks/paypal"
	paystackwebhook "github.com/kelechio/storefront-backend/internal/webhooks/paystack"
	"github.com/kelechio/storefront-backend/pkg/config"
	"github.com/kelechio/storefront-backend/pkg/logger"
)

// Services bundles everything the router mounts.
type Services struct {
	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
	Orders   ordersvc.Service
	Shipping shipping.Service

	PaystackWebhook *paystackwebhook.Service
	PayPalWebhook   *paypalwebhook.Service
	PayPalVerifier  webhookcontrollers.SignatureVerifier

	HealthDeps map[string]controllers.Pinger
}

func NewRouter(cfg *config.Config, logg *logger.Logger, svcs Services) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, svcs.HealthDeps))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/paystack", webhookcontrollers.PaystackWebhook(svcs.PaystackWebhook, cfg.Paystack.SecretKey, logg))
		r.Post("/paypal", webhookcontrollers.PayPalWebhook(svcs.PayPalWebhook, svcs.PayPalVerifier, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(logg))

		r.Get("/countries", controllers.CountriesList(svcs.Shipping, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireIdentity(logg))
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(svcs.Cart, logg))
				r.Post("/", controllers.CartToggle(svcs.Cart, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(logg))

			r.Post("/checkout", controllers.Checkout(svcs.Checkout, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(svcs.Orders, logg))
				r.Get("/{txRef}", controllers.OrderDetail(svcs.Orders, logg))
			})

			r.Route("/shipping-addresses", func(r chi.Router) {
				r.Get("/", controllers.ShippingAddressList(svcs.Shipping, logg))
				r.Post("/", controllers.ShippingAddressCreate(svcs.Shipping, logg))
				r.Get("/{addressId}", controllers.ShippingAddressDetail(svcs.Shipping, logg))
				r.Put("/{addressId}", controllers.ShippingAddressUpdate(svcs.Shipping, logg))
				r.Delete("/{addressId}", controllers.ShippingAddressDelete(svcs.Shipping, logg))
			})
		})
	})

	return r
}

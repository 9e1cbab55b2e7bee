package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/kelechio/storefront-backend/api/responses"
	paypalwebhook "github.com/kelechio/storefront-backend/internal/webhooks/paypal"
	pkgerrors "github.com/kelechio/storefront-backend/pkg/errors"
	"github.com/kelechio/storefront-backend/pkg/logger"
	"github.com/kelechio/storefront-backend/pkg/metrics"
	"github.com/kelechio/storefront-backend/pkg/paypal"
)

// SignatureVerifier round-trips transmission material through PayPal's
// verification API. The pkg/paypal client satisfies it.
type SignatureVerifier interface {
	VerifyWebhookSignature(ctx context.Context, headers paypal.SignatureHeaders, rawEvent []byte) (string, error)
}

// PayPalWebhook verifies and ingests PayPal event deliveries. PayPal always
// gets a 200 back: verification failures and timeouts drop the event rather
// than invite a retry storm, since an unverifiable delivery will not become
// verifiable later.
func PayPalWebhook(svc *paypalwebhook.Service, verifier SignatureVerifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || verifier == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading webhook body"))
			return
		}

		headers := paypal.SignatureHeaders{
			TransmissionID:   r.Header.Get("Paypal-Transmission-Id"),
			TransmissionTime: r.Header.Get("Paypal-Transmission-Time"),
			CertURL:          r.Header.Get("Paypal-Cert-Url"),
			AuthAlgo:         r.Header.Get("Paypal-Auth-Algo"),
			TransmissionSig:  r.Header.Get("Paypal-Transmission-Sig"),
		}
		if !headers.Complete() {
			logg.Warn(ctx, "paypal webhook missing transmission headers")
			metrics.WebhookEvents.WithLabelValues(paypalwebhook.Gateway, metrics.OutcomeRejected).Inc()
			responses.WriteSuccess(w, nil)
			return
		}

		status, err := verifier.VerifyWebhookSignature(ctx, headers, body)
		if err != nil {
			logg.Error(ctx, "paypal webhook verification round-trip failed", err)
			metrics.WebhookEvents.WithLabelValues(paypalwebhook.Gateway, metrics.OutcomeRejected).Inc()
			responses.WriteSuccess(w, nil)
			return
		}
		if status != paypal.VerificationSuccess {
			logg.Warn(ctx, "paypal webhook signature not verified")
			metrics.WebhookEvents.WithLabelValues(paypalwebhook.Gateway, metrics.OutcomeRejected).Inc()
			responses.WriteSuccess(w, nil)
			return
		}

		if _, err := svc.Handle(ctx, body); err != nil {
			logg.Error(ctx, "paypal webhook processing failed", err)
		}
		responses.WriteSuccess(w, nil)
	}
}

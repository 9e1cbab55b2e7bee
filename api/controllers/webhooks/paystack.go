package webhooks

import (
	"io"
	"net/http"

	"github.com/kelechio/storefront-backend/api/responses"
	paystackwebhook "github.com/kelechio/storefront-backend/internal/webhooks/paystack"
	pkgerrors "github.com/kelechio/storefront-backend/pkg/errors"
	"github.com/kelechio/storefront-backend/pkg/logger"
	"github.com/kelechio/storefront-backend/pkg/metrics"
)

const (
	paystackSignatureHeader = "x-paystack-signature"

	webhookBodyLimit int64 = 1 << 20
)

// PaystackWebhook verifies and ingests Paystack event deliveries. A bad
// signature is the only condition that earns a non-200: any verified event is
// acknowledged even when it is ignored or fails downstream, because Paystack
// retries non-200s and reconciliation is idempotent anyway.
func PaystackWebhook(svc *paystackwebhook.Service, secretKey string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading webhook body"))
			return
		}

		signature := r.Header.Get(paystackSignatureHeader)
		if !paystackwebhook.VerifySignature(secretKey, body, signature) {
			metrics.WebhookEvents.WithLabelValues(paystackwebhook.Gateway, metrics.OutcomeRejected).Inc()
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeAuthenticity, "webhook signature mismatch"))
			return
		}

		if _, err := svc.Handle(ctx, body); err != nil {
			// Acknowledged anyway; the idempotency mark was released so a
			// redelivery can retry the reconciliation.
			logg.Error(ctx, "paystack webhook processing failed", err)
		}
		responses.WriteSuccess(w, nil)
	}
}

package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	stdErrors "errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kelechio/storefront-backend/internal/notifications"
	"github.com/kelechio/storefront-backend/internal/payments"
	"github.com/kelechio/storefront-backend/internal/webhooks"
	"github.com/kelechio/storefront-backend/pkg/logger"
	"github.com/kelechio/storefront-backend/pkg/metrics"
)

const (
	// Gateway is the metrics/idempotency label for this source.
	Gateway = "paystack"

	eventChargeSuccess = "charge.success"
	statusSuccess      = "success"
	responseSuccessful = "Successful"
)

// Event is the subset of a Paystack webhook payload the pipeline reads.
// Amounts arrive in minor units (kobo).
type Event struct {
	Event string `json:"event"`
	Data  struct {
		ID              int64  `json:"id"`
		Reference       string `json:"reference"`
		Status          string `json:"status"`
		GatewayResponse string `json:"gateway_response"`
		Amount          int64  `json:"amount"`
		Customer        struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Email     string `json:"email"`
		} `json:"customer"`
	} `json:"data"`
}

// Disposition is the coarse outcome reported to the transport layer. The
// gateway always gets a 200 back either way.
type Disposition string

const (
	DispositionAccepted Disposition = "accepted"
	DispositionIgnored  Disposition = "ignored"
)

// VerifySignature checks the x-paystack-signature header: hex HMAC-SHA512 of
// the raw body under the secret key.
func VerifySignature(secretKey string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// Service turns verified Paystack events into reconciliation calls.
type Service struct {
	reconciler payments.Reconciler
	notifier   *notifications.Service
	guard      *webhooks.Guard
	logg       *logger.Logger
}

func NewService(reconciler payments.Reconciler, notifier *notifications.Service, guard *webhooks.Guard, logg *logger.Logger) (*Service, error) {
	if reconciler == nil {
		return nil, stdErrors.New("reconciler is required")
	}
	if notifier == nil {
		return nil, stdErrors.New("notifier is required")
	}
	if logg == nil {
		return nil, stdErrors.New("logger is required")
	}
	return &Service{reconciler: reconciler, notifier: notifier, guard: guard, logg: logg}, nil
}

// Handle processes a signature-verified webhook body. Unparseable and
// non-charge events are ignored, never errored, so the gateway stops
// redelivering them.
func (s *Service) Handle(ctx context.Context, body []byte) (Disposition, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		s.logg.Warn(ctx, "unparseable webhook payload ignored")
		metrics.WebhookEvents.WithLabelValues(Gateway, metrics.OutcomeIgnored).Inc()
		return DispositionIgnored, nil
	}

	if event.Event != eventChargeSuccess ||
		event.Data.Status != statusSuccess ||
		event.Data.GatewayResponse != responseSuccessful {
		metrics.WebhookEvents.WithLabelValues(Gateway, metrics.OutcomeIgnored).Inc()
		return DispositionIgnored, nil
	}

	eventID := eventKey(event)
	if !s.guard.CheckAndMark(ctx, Gateway, eventID) {
		s.logg.Info(ctx, "duplicate webhook delivery suppressed")
		metrics.WebhookEvents.WithLabelValues(Gateway, metrics.OutcomeIgnored).Inc()
		return DispositionIgnored, nil
	}

	payment := payments.Payment{
		Gateway:    Gateway,
		TxRef:      event.Data.Reference,
		Amount:     decimal.New(event.Data.Amount, -2),
		PayerName:  strings.TrimSpace(event.Data.Customer.FirstName + " " + event.Data.Customer.LastName),
		PayerEmail: event.Data.Customer.Email,
	}

	result, err := s.reconciler.Reconcile(ctx, payment)
	if err != nil {
		s.guard.Release(ctx, Gateway, eventID)
		return "", err
	}

	if result == payments.ResultOrphan && payment.PayerEmail != "" {
		// Money moved but no order claims it; tell the payer so support
		// hears about it from them, not from a chargeback.
		s.notifier.NotifyPaymentFailed(ctx, notifications.Notice{
			Name:   payment.PayerName,
			Email:  payment.PayerEmail,
			TxRef:  payment.TxRef,
			Amount: payment.Amount,
		})
	}

	metrics.WebhookEvents.WithLabelValues(Gateway, metrics.OutcomeAccepted).Inc()
	return DispositionAccepted, nil
}

func eventKey(event Event) string {
	if event.Data.ID != 0 {
		return strconv.FormatInt(event.Data.ID, 10)
	}
	return event.Data.Reference
}

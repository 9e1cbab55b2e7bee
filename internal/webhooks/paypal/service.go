package paypal

import (
	"context"
	"encoding/json"
	stdErrors "errors"

	"github.com/shopspring/decimal"

	"github.com/kelechio/storefront-backend/internal/payments"
	"github.com/kelechio/storefront-backend/internal/webhooks"
	"github.com/kelechio/storefront-backend/pkg/logger"
	"github.com/kelechio/storefront-backend/pkg/metrics"
)

const (
	// Gateway is the metrics/idempotency label for this source.
	Gateway = "paypal"

	eventOrderApproved = "CHECKOUT.ORDER.APPROVED"
)

// Event is the subset of a PayPal webhook payload the pipeline reads. The
// transaction reference rides in the first purchase unit's reference_id;
// amounts are decimal strings in major units.
type Event struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		PurchaseUnits []struct {
			ReferenceID string `json:"reference_id"`
			Amount      struct {
				CurrencyCode string `json:"currency_code"`
				Value        string `json:"value"`
			} `json:"amount"`
		} `json:"purchase_units"`
	} `json:"resource"`
}

// Disposition is the coarse outcome reported to the transport layer.
type Disposition string

const (
	DispositionAccepted Disposition = "accepted"
	DispositionIgnored  Disposition = "ignored"
)

// Service turns verified PayPal events into reconciliation calls. Unlike the
// Paystack path, orphaned references are dropped silently: approval events can
// arrive for orders created outside this system.
type Service struct {
	reconciler payments.Reconciler
	guard      *webhooks.Guard
	logg       *logger.Logger
}

func NewService(reconciler payments.Reconciler, guard *webhooks.Guard, logg *logger.Logger) (*Service, error) {
	if reconciler == nil {
		return nil, stdErrors.New("reconciler is required")
	}
	if logg == nil {
		return nil, stdErrors.New("logger is required")
	}
	return &Service{reconciler: reconciler, guard: guard, logg: logg}, nil
}

// Handle processes a signature-verified webhook body.
func (s *Service) Handle(ctx context.Context, body []byte) (Disposition, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		s.logg.Warn(ctx, "unparseable webhook payload ignored")
		metrics.WebhookEvents.WithLabelValues(Gateway, metrics.OutcomeIgnored).Inc()
		return DispositionIgnored, nil
	}

	if event.EventType != eventOrderApproved || len(event.Resource.PurchaseUnits) == 0 {
		metrics.WebhookEvents.WithLabelValues(Gateway, metrics.OutcomeIgnored).Inc()
		return DispositionIgnored, nil
	}

	unit := event.Resource.PurchaseUnits[0]
	amount, err := decimal.NewFromString(unit.Amount.Value)
	if err != nil {
		s.logg.Warn(ctx, "webhook carried a malformed amount, ignoring")
		metrics.WebhookEvents.WithLabelValues(Gateway, metrics.OutcomeIgnored).Inc()
		return DispositionIgnored, nil
	}

	if !s.guard.CheckAndMark(ctx, Gateway, event.ID) {
		s.logg.Info(ctx, "duplicate webhook delivery suppressed")
		metrics.WebhookEvents.WithLabelValues(Gateway, metrics.OutcomeIgnored).Inc()
		return DispositionIgnored, nil
	}

	_, err = s.reconciler.Reconcile(ctx, payments.Payment{
		Gateway: Gateway,
		TxRef:   unit.ReferenceID,
		Amount:  amount,
	})
	if err != nil {
		s.guard.Release(ctx, Gateway, event.ID)
		return "", err
	}

	metrics.WebhookEvents.WithLabelValues(Gateway, metrics.OutcomeAccepted).Inc()
	return DispositionAccepted, nil
}

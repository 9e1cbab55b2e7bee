package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook ingress/outcome counters. Outcome labels are small and bounded:
// accepted, ignored, rejected for events; successful, failed, duplicate,
// orphan for reconciliations.
var (
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "webhooks",
		Name:      "events_total",
		Help:      "Webhook events received, by gateway and outcome.",
	}, []string{"gateway", "outcome"})

	Reconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "payments",
		Name:      "reconciliations_total",
		Help:      "Payment reconciliation outcomes, by gateway and result.",
	}, []string{"gateway", "result"})
)

const (
	OutcomeAccepted = "accepted"
	OutcomeIgnored  = "ignored"
	OutcomeRejected = "rejected"

	ResultSuccessful = "successful"
	ResultFailed     = "failed"
	ResultDuplicate  = "duplicate"
	ResultOrphan     = "orphan"
)

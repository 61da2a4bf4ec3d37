package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the order/payment flow, exposed at /metrics.
var (
	// OrdersCreated counts orders persisted by the creation endpoint, by payment method.
	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "orders_created_total",
		Help:      "Number of orders created.",
	}, []string{"payment_method"})

	// PaymentsConfirmed counts confirmations that won the pending-to-paid transition.
	PaymentsConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "payments_confirmed_total",
		Help:      "Number of payments confirmed, by trigger (capture or callback).",
	}, []string{"trigger"})

	// DuplicateCaptures counts capture attempts that found the order already paid.
	DuplicateCaptures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "duplicate_captures_total",
		Help:      "Number of capture attempts on already-paid orders.",
	})

	// CaptureFailures counts captures rejected for missing products or stock.
	CaptureFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "capture_failures_total",
		Help:      "Number of failed capture attempts, by reason.",
	}, []string{"reason"})

	// SignatureFailures counts gateway callbacks rejected for a bad signature.
	SignatureFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "callback_signature_failures_total",
		Help:      "Number of gateway callbacks with an invalid signature.",
	})
)

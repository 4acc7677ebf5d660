package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for storefront-level observability:
// cart activity and the checkout funnel.
type BusinessMetrics struct {
	// Cart
	CartItemsAdd *prometheus.CounterVec
	CartUpdated  prometheus.Counter
	CartCleared  prometheus.Counter

	// Checkout funnel
	CheckoutStarted   prometheus.Counter
	CheckoutCompleted prometheus.Counter
	CheckoutFailed    *prometheus.CounterVec

	// Orders
	OrdersCreated  prometheus.Counter
	OrderValue     prometheus.Histogram
	OrderItemCount prometheus.Histogram
}

// NewBusinessMetrics creates and registers all business metrics on reg.
// Pass prometheus.DefaultRegisterer in production; tests use a fresh
// prometheus.NewRegistry to avoid duplicate registration.
func NewBusinessMetrics(namespace string, reg prometheus.Registerer) *BusinessMetrics {
	if namespace == "" {
		namespace = "lanternfox"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	subsystem := "business"
	factory := promauto.With(reg)

	return &BusinessMetrics{
		CartItemsAdd: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_add_total",
				Help:      "Total add to cart actions",
			},
			[]string{"item_type"}, // item_type: store, marketplace
		),
		CartUpdated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_updated_total",
				Help:      "Total cart mutations persisted",
			},
		),
		CartCleared: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_cleared_total",
				Help:      "Total carts reset to empty",
			},
		),
		CheckoutStarted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_started_total",
				Help:      "Total order submissions entered",
			},
		),
		CheckoutCompleted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_completed_total",
				Help:      "Total successful order submissions",
			},
		),
		CheckoutFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_failed_total",
				Help:      "Total failed order submissions by step",
			},
			[]string{"step"}, // step: validating, trade_recording, creating
		),
		OrdersCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_created_total",
				Help:      "Total orders persisted",
			},
		),
		OrderValue: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value",
				Help:      "Persisted order totals in currency units",
				Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
			},
		),
		OrderItemCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_item_count",
				Help:      "Line items per persisted order",
				Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
			},
		),
	}
}

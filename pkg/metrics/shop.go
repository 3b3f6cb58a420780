package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomePlaced            = "placed"
	OutcomeFlagged           = "flagged"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeInvalid           = "invalid"
	OutcomeError             = "error"
)

var (
	// Latency of the whole checkout, including post-commit side effects
	CheckoutLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "techshop_checkout_latency_seconds",
		Help:    "Latency of checkout requests",
		Buckets: prometheus.DefBuckets,
	})

	CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "techshop_checkout_total",
		Help: "Checkouts by outcome",
	}, []string{"outcome"})

	FraudFlags = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "techshop_fraud_flags_total",
		Help: "Orders flagged for review by risk level",
	}, []string{"level"})

	StockRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "techshop_stock_rejections_total",
		Help: "Order lines rejected for insufficient stock at commit time",
	})

	OrderTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "techshop_order_transitions_total",
		Help: "Order status transitions by target status",
	}, []string{"status"})

	SideEffectFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "techshop_checkout_side_effect_failures_total",
		Help: "Post-commit checkout side effects that failed",
	}, []string{"effect"})
)

func Init() {
	prometheus.MustRegister(
		CheckoutLatency,
		CheckoutTotal,
		FraudFlags,
		StockRejections,
		OrderTransitions,
		SideEffectFailures,
	)
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		TokenOrdersCreated,
		TokenPaymentsByStatus,
		TokenRefundsProcessed,
		TokenOrdersReconciled,
	)
}

var (
	TokenOrdersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "token_orders_created_total",
			Help: "Count of gateway orders created for token charges.",
		},
	)

	// status: paid|failed|refunded
	TokenPaymentsByStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_payments_total",
			Help: "Count of token payment outcomes by final status.",
		},
		[]string{"status"},
	)

	TokenRefundsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "token_refunds_processed_total",
			Help: "Count of token charges refunded by the refund worker.",
		},
	)

	TokenOrdersReconciled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "token_orders_reconciled_total",
			Help: "Count of abandoned token orders failed by the reconciler.",
		},
	)
)

package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Order creation attempts by result: completed, payment_failed, rejected, error.
	OrdersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Order creation attempts by result",
	}, []string{"result"})

	OrderWorkflowLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_workflow_latency_seconds",
		Help:    "Latency of the reserve, authorize and confirm order workflow",
		Buckets: prometheus.DefBuckets,
	})

	PaymentGatewayLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_gateway_latency_seconds",
		Help:    "Latency of payment gateway calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// Conditional stock decrements that matched no row.
	StockConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_stock_conflicts_total",
		Help: "Reservations rejected because stock ran out",
	})

	// Refunds issued while compensating a failed order, by result: refunded, failed.
	PaymentRefunds = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_payment_refunds_total",
		Help: "Captured payments refunded because the order could not be completed",
	}, []string{"result"})

	StaleOrdersReleased = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_stale_released_total",
		Help: "Pending orders cancelled by the sweeper",
	})
)

func Init() {
	prometheus.MustRegister(
		OrdersTotal,
		OrderWorkflowLatency,
		PaymentGatewayLatency,
		StockConflicts,
		PaymentRefunds,
		StaleOrdersReleased,
	)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_created_total",
		Help: "Total number of orders successfully created.",
	})

	OrderCreateErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_order_create_errors_total",
		Help: "Total number of failed order creation attempts.",
	})

	StatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_status_transitions_total",
		Help: "Total number of payment status transitions by status code.",
	},
		[]string{"status"},
	)

	UnknownStatusTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_unknown_status_total",
		Help: "Total number of unrecognized status codes received from the feed.",
	})

	FeedErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_feed_errors_total",
		Help: "Total number of live feed connection failures.",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "checkout_active_sessions",
		Help: "Current number of open payment detail sessions.",
	})
)

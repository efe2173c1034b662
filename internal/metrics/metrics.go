package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	chargeAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventflow_charge_attempts_total",
			Help: "Mock payment charges by outcome",
		},
		[]string{"outcome"},
	)

	ordersPlaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventflow_orders_placed_total",
			Help: "Orders created by successful checkouts",
		},
	)

	orderValue = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventflow_order_value_cents",
			Help:    "Grand total of placed orders in cents",
			Buckets: prometheus.ExponentialBuckets(1000, 2, 10),
		},
	)

	cartCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventflow_cart_commands_total",
			Help: "Cart state transitions by command",
		},
		[]string{"command"},
	)

	httpRequests = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventflow_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
)

// TrackCharge records a charge outcome ("success", "declined", "invalid").
func TrackCharge(outcome string) {
	chargeAttempts.WithLabelValues(outcome).Inc()
}

// TrackOrder records a placed order and its value.
func TrackOrder(totalCents int64) {
	ordersPlaced.Inc()
	orderValue.Observe(float64(totalCents))
}

// TrackCartCommand counts a cart transition.
func TrackCartCommand(command string) {
	cartCommands.WithLabelValues(command).Inc()
}

// TrackHTTP observes a completed request.
func TrackHTTP(method string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

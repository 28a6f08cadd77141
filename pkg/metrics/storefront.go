package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records cart, catalog, and checkout activity.
type StorefrontMetrics struct {
	cartCommands  *prometheus.CounterVec
	catalogFetch  *prometheus.HistogramVec
	checkoutsDone prometheus.Counter
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartCommands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_commands_total",
		Help: "Cart commands applied, by command and outcome.",
	}, []string{"command", "outcome"})
	catalogFetch := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_fetch_duration_seconds",
		Help:    "Duration of catalog API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "result"})
	checkoutsDone := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_completed_total",
		Help: "Simulated checkouts that completed.",
	})
	reg.MustRegister(cartCommands, catalogFetch, checkoutsDone)
	return &StorefrontMetrics{
		cartCommands:  cartCommands,
		catalogFetch:  catalogFetch,
		checkoutsDone: checkoutsDone,
	}
}

// IncCartCommand counts one applied cart command.
func (m *StorefrontMetrics) IncCartCommand(command, outcome string) {
	if m == nil || m.cartCommands == nil {
		return
	}
	m.cartCommands.WithLabelValues(normalizeLabel(command), normalizeLabel(outcome)).Inc()
}

// ObserveCatalogFetch records the duration of one catalog call.
func (m *StorefrontMetrics) ObserveCatalogFetch(operation string, ok bool, duration time.Duration) {
	if m == nil || m.catalogFetch == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.catalogFetch.WithLabelValues(normalizeLabel(operation), result).Observe(duration.Seconds())
}

// IncCheckoutCompleted counts a finished checkout.
func (m *StorefrontMetrics) IncCheckoutCompleted() {
	if m == nil || m.checkoutsDone == nil {
		return
	}
	m.checkoutsDone.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

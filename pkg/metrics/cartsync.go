package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartSyncMetrics records outcomes of cart mutation dispatches.
type CartSyncMetrics struct {
	duration  *prometheus.HistogramVec
	success   *prometheus.CounterVec
	failure   *prometheus.CounterVec
	rollbacks prometheus.Counter
	coalesced prometheus.Counter
}

// NewCartSyncMetrics registers the cart sync metrics on the provided registerer.
func NewCartSyncMetrics(reg prometheus.Registerer) *CartSyncMetrics {
	if reg == nil {
		return &CartSyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_sync_duration_seconds",
		Help:    "Duration of cart mutation calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_success",
		Help: "Successful cart mutation dispatches.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_failure",
		Help: "Failed cart mutation dispatches.",
	}, []string{"operation"})
	rollbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_sync_rollbacks",
		Help: "Optimistic edits rolled back to the server-confirmed value.",
	})
	coalesced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_sync_coalesced_edits",
		Help: "User edits absorbed into an already-armed debounce window.",
	})
	reg.MustRegister(duration, success, failure, rollbacks, coalesced)
	return &CartSyncMetrics{
		duration:  duration,
		success:   success,
		failure:   failure,
		rollbacks: rollbacks,
		coalesced: coalesced,
	}
}

// ObserveDuration records the duration for the named operation.
func (c *CartSyncMetrics) ObserveDuration(operation string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (c *CartSyncMetrics) IncSuccess(operation string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (c *CartSyncMetrics) IncFailure(operation string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncRollback counts one optimistic edit rolled back after a failure.
func (c *CartSyncMetrics) IncRollback() {
	if c == nil || c.rollbacks == nil {
		return
	}
	c.rollbacks.Inc()
}

// IncCoalesced counts one edit swallowed by the debounce window.
func (c *CartSyncMetrics) IncCoalesced() {
	if c == nil || c.coalesced == nil {
		return
	}
	c.coalesced.Inc()
}

func normalizeLabel(operation string) string {
	if operation == "" {
		return "unknown"
	}
	return operation
}

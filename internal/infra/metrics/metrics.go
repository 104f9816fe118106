// File: internal/infra/metrics/metrics.go
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	callbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_callbacks_total",
			Help: "Inbound provider callbacks by provider and outcome (paid/duplicate/invalid_signature/not_found/error).",
		},
		[]string{"provider", "outcome"},
	)

	claimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guest_claims_total",
			Help: "Guest order claim attempts by outcome (claimed/already_own/conflict/rejected/error).",
		},
		[]string{"outcome"},
	)

	grantsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "benefit_grants_total",
			Help: "Benefit grants by kind (quota/subscription/camp) and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	repairsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscription_repairs_total",
			Help: "Missing-subscription rows recreated by the self-healing path.",
		},
	)

	commissionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commission_invocations_total",
			Help: "Commission calculation invocations by outcome.",
		},
		[]string{"outcome"},
	)

	cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Cache lookups by entity and result (hit/miss).",
		},
		[]string{"entity", "result"},
	)

	callbackLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_callback_latency_ms",
			Help:    "Callback handling latency distribution in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600, 3000},
		},
		[]string{"provider"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			callbacksTotal, claimsTotal, grantsTotal,
			repairsTotal, commissionTotal, cacheRequests,
			callbackLatencyMs,
		)
	})
}

func IncCallback(provider, outcome string) {
	callbacksTotal.WithLabelValues(provider, outcome).Inc()
}

func IncClaim(outcome string) {
	claimsTotal.WithLabelValues(outcome).Inc()
}

func IncGrant(kind, outcome string) {
	grantsTotal.WithLabelValues(kind, outcome).Inc()
}

func IncRepair() { repairsTotal.Inc() }

func IncCommission(outcome string) {
	commissionTotal.WithLabelValues(outcome).Inc()
}

func IncCacheRequest(entity, result string) {
	cacheRequests.WithLabelValues(entity, result).Inc()
}

func ObserveCallbackLatency(provider string, ms float64) {
	callbackLatencyMs.WithLabelValues(provider).Observe(ms)
}

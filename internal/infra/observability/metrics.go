package observability

import (
	"time"

	"github.com/servicofacil/prestador-api/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the provider API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	registrations   *prometheus.CounterVec
	activations     *prometheus.CounterVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "prestador_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		registrations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prestador_registrations_total",
				Help: "Total provider registrations by outcome.",
			},
			[]string{"outcome"},
		),
		activations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prestador_activations_total",
				Help: "Total provider activations by outcome.",
			},
			[]string{"outcome"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prestador_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prestador_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prestador_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrRegistration counts a registration attempt: success, duplicate_cnpj,
// cnpj_not_active or error.
func (m *Metrics) IncrRegistration(outcome string) {
	m.registrations.WithLabelValues(outcome).Inc()
}

// IncrActivation counts an activation attempt: success, token_not_found,
// token_expired or error.
func (m *Metrics) IncrActivation(outcome string) {
	m.activations.WithLabelValues(outcome).Inc()
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// ProviderSnapshot returns current counter values for the
// GET /v1/metrics/providers endpoint.
func (m *Metrics) ProviderSnapshot() *domain.ProviderMetrics {
	registered := getCounterValue(m.registrations, "success")
	rejectedCnpj := getCounterValue(m.registrations, "duplicate_cnpj") +
		getCounterValue(m.registrations, "cnpj_not_active")
	activated := getCounterValue(m.activations, "success")
	expiredTokens := getCounterValue(m.activations, "token_expired")
	registryErrors := getCounterValue(m.externalErrors, "registry")
	cacheHits := getCounterValue(m.cacheHits, "cnpj")
	cacheMisses := getCounterValue(m.cacheMisses, "cnpj")

	cacheHitRate := float64(0)
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}
	activationRate := float64(0)
	if registered > 0 {
		activationRate = activated / registered
	}

	return &domain.ProviderMetrics{
		Registrations:  int64(registered),
		RejectedCnpj:   int64(rejectedCnpj),
		Activations:    int64(activated),
		ExpiredTokens:  int64(expiredTokens),
		RegistryErrors: int64(registryErrors),
		ActivationRate: activationRate,
		CacheHitRate:   cacheHitRate,
		Period:         "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// Package metrics holds the service's Prometheus collectors. Every App gets
// its own registry so tests and multiple instances never collide on names.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "countryblock"

// Check results used as the "result" label of Checks.
const (
	ResultBlocked = "blocked"
	ResultAllowed = "allowed"
	ResultError   = "error"
)

type Metrics struct {
	Registry *prometheus.Registry

	Checks            *prometheus.CounterVec
	RateLimitRejected prometheus.Counter
	SweeperEvictions  prometheus.Counter
	UpstreamFailures  prometheus.Counter
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Block checks performed, labeled by result.",
		}, []string{"result"}),
		RateLimitRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_rejected_total",
			Help:      "Requests rejected by the per client rate limiter.",
		}),
		SweeperEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeper_evictions_total",
			Help:      "Expired temporary blocks removed by the sweeper.",
		}),
		UpstreamFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_failures_total",
			Help:      "Failed geolocation lookups.",
		}),
	}

	m.Registry.MustRegister(
		m.Checks,
		m.RateLimitRejected,
		m.SweeperEvictions,
		m.UpstreamFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RegisterGauge exposes fn as a gauge named countryblock_<name>. It panics
// if the name is taken, like MustRegister.
func (m *Metrics) RegisterGauge(name, help string, fn func() float64) {
	m.Registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

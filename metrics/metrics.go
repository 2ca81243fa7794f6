// Package metrics holds the Prometheus collectors for sovereign coin operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the engine and harvester.
type Metrics struct {
	CoinsCreated           prometheus.Counter
	BondMappingsRegistered prometheus.Counter
	FeesHarvested          prometheus.Counter
	FeesWithdrawn          prometheus.Counter
	OperationErrors        *prometheus.CounterVec
	OperationDuration      *prometheus.HistogramVec
}

// New creates the metrics and registers them on reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		CoinsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "sovereign_coins_created_total",
			Help: "Total number of sovereign coins that completed setup",
		}),
		BondMappingsRegistered: f.NewCounter(prometheus.CounterOpts{
			Name: "sovereign_bond_mappings_registered_total",
			Help: "Total number of bond mappings appended to the registry",
		}),
		FeesHarvested: f.NewCounter(prometheus.CounterOpts{
			Name: "sovereign_fees_harvested_total",
			Help: "Total withheld transfer fee units harvested into mints",
		}),
		FeesWithdrawn: f.NewCounter(prometheus.CounterOpts{
			Name: "sovereign_fees_withdrawn_total",
			Help: "Total transfer fee units withdrawn into protocol vaults",
		}),
		OperationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sovereign_operation_errors_total",
			Help: "Failed operations by operation and error code",
		}, []string{"op", "code"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sovereign_operation_duration_seconds",
			Help:    "Operation latency by operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}
}

// IncrementCoinsCreated increments the coins created counter by 1
func (m *Metrics) IncrementCoinsCreated() {
	m.CoinsCreated.Inc()
}

// IncrementBondMappings increments the bond mapping counter by 1
func (m *Metrics) IncrementBondMappings() {
	m.BondMappingsRegistered.Inc()
}

// AddFeesHarvested adds amount to the harvested fee counter.
func (m *Metrics) AddFeesHarvested(amount uint64) {
	m.FeesHarvested.Add(float64(amount))
}

// AddFeesWithdrawn adds amount to the withdrawn fee counter.
func (m *Metrics) AddFeesWithdrawn(amount uint64) {
	m.FeesWithdrawn.Add(float64(amount))
}

// ObserveOperation records the duration of op and, when code is non-empty,
// counts it as a failure.
func (m *Metrics) ObserveOperation(op, code string, d time.Duration) {
	m.OperationDuration.WithLabelValues(op).Observe(d.Seconds())
	if code != "" {
		m.OperationErrors.WithLabelValues(op, code).Inc()
	}
}

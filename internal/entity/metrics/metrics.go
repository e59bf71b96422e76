package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the entity workflow.
type Metrics struct {
	Created     prometheus.Counter
	Approved    prometheus.Counter
	Rejected    prometheus.Counter
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// New creates and registers all entity workflow metrics.
func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_entities_created_total",
			Help: "Total number of durable entities created",
		}),
		Approved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_entities_approved_total",
			Help: "Total number of entities approved",
		}),
		Rejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_entities_rejected_total",
			Help: "Total number of entities rejected",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_entity_cache_hits_total",
			Help: "Entity reads served from the cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_entity_cache_misses_total",
			Help: "Entity reads that fell back to the durable store",
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	if m != nil {
		m.Created.Inc()
	}
}

func (m *Metrics) IncrementApproved() {
	if m != nil {
		m.Approved.Inc()
	}
}

func (m *Metrics) IncrementRejected() {
	if m != nil {
		m.Rejected.Inc()
	}
}

func (m *Metrics) RecordCacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) RecordCacheMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

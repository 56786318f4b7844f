package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// QualificationMetrics exposes counters/histograms for lead qualification
// flows. A nil receiver is valid and records nothing, so callers do not
// need to guard against metrics being unconfigured.
type QualificationMetrics struct {
	sessionsStarted   prometheus.Counter
	sessionsCompleted *prometheus.CounterVec
	leadsStored       *prometheus.CounterVec
	extractorFallback *prometheus.CounterVec
	capabilityLatency *prometheus.HistogramVec
}

func NewQualificationMetrics(reg prometheus.Registerer) *QualificationMetrics {
	m := &QualificationMetrics{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "qualify",
			Name:      "sessions_started_total",
			Help:      "Total qualification sessions started",
		}),
		sessionsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "qualify",
			Name:      "sessions_completed_total",
			Help:      "Total qualification sessions completed",
		}, []string{"category", "reason"}),
		leadsStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "qualify",
			Name:      "leads_stored_total",
			Help:      "Total finalized leads persisted",
		}, []string{"category"}),
		extractorFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "qualify",
			Name:      "extraction_fallback_total",
			Help:      "Total extractions served by the keyword fallback",
		}, []string{"cause"}),
		capabilityLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portfolio",
			Subsystem: "qualify",
			Name:      "capability_latency_seconds",
			Help:      "Latency of text-generation capability calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessionsStarted, m.sessionsCompleted, m.leadsStored, m.extractorFallback, m.capabilityLatency)
	return m
}

func (m *QualificationMetrics) RecordSessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

func (m *QualificationMetrics) RecordSessionCompleted(category, reason string) {
	if m == nil {
		return
	}
	m.sessionsCompleted.WithLabelValues(category, reason).Inc()
}

func (m *QualificationMetrics) RecordLeadStored(category string) {
	if m == nil {
		return
	}
	m.leadsStored.WithLabelValues(category).Inc()
}

func (m *QualificationMetrics) RecordExtractionFallback(cause string) {
	if m == nil {
		return
	}
	m.extractorFallback.WithLabelValues(cause).Inc()
}

func (m *QualificationMetrics) ObserveCapabilityLatency(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.capabilityLatency.WithLabelValues(operation).Observe(d.Seconds())
}

// Package metrics holds the Prometheus collectors for interview processing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hh_interviewer"

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	TurnsTotal           *prometheus.CounterVec
	FlagsTotal           *prometheus.CounterVec
	RecommendationsTotal *prometheus.CounterVec
	TerminationsTotal    *prometheus.CounterVec
	ActiveSessions       prometheus.Gauge

	// AI capability metrics
	CapabilityRequests *prometheus.CounterVec
	CapabilityLatency  *prometheus.HistogramVec
	BreakerTransitions *prometheus.CounterVec
	JudgeCacheHits     prometheus.Counter
	JudgeCacheMisses   prometheus.Counter
}

// New registers all collectors with reg. Passing a fresh registry keeps tests isolated.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TurnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "turns_total",
				Help:      "Evaluated turns by topic kind",
			},
			[]string{"topic"},
		),
		FlagsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "flags_total",
				Help:      "Quality flags raised on turns",
			},
			[]string{"flag"},
		),
		RecommendationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recommendations_total",
				Help:      "Final recommendations produced",
			},
			[]string{"recommendation"},
		),
		TerminationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "terminations_total",
				Help:      "Interviews terminated by reason",
			},
			[]string{"reason"},
		),
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Sessions currently held in memory",
			},
		),
		CapabilityRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "capability_requests_total",
				Help:      "Calls to AI capabilities by outcome",
			},
			[]string{"capability", "status"},
		),
		CapabilityLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "capability_latency_seconds",
				Help:      "AI capability latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"capability"},
		),
		BreakerTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "breaker_transitions_total",
				Help:      "Circuit breaker state changes",
			},
			[]string{"breaker", "to"},
		),
		JudgeCacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "judge_cache_hits_total",
				Help:      "Judge verdicts served from cache",
			},
		),
		JudgeCacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "judge_cache_misses_total",
				Help:      "Judge verdicts that required a model call",
			},
		),
	}
}

func (m *Metrics) ObserveTurn(topic string, flags []string) {
	if m == nil {
		return
	}
	m.TurnsTotal.WithLabelValues(topic).Inc()
	for _, flag := range flags {
		m.FlagsTotal.WithLabelValues(flag).Inc()
	}
}

func (m *Metrics) ObserveRecommendation(recommendation string) {
	if m == nil {
		return
	}
	m.RecommendationsTotal.WithLabelValues(recommendation).Inc()
}

func (m *Metrics) ObserveTermination(reason string) {
	if m == nil {
		return
	}
	m.TerminationsTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

// ObserveCapability records one call outcome and its latency.
func (m *Metrics) ObserveCapability(capability string, started time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.CapabilityRequests.WithLabelValues(capability, status).Inc()
	m.CapabilityLatency.WithLabelValues(capability).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveBreaker(name, to string) {
	if m == nil {
		return
	}
	m.BreakerTransitions.WithLabelValues(name, to).Inc()
}

func (m *Metrics) ObserveJudgeCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.JudgeCacheHits.Inc()
		return
	}
	m.JudgeCacheMisses.Inc()
}

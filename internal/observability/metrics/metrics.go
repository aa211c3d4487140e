package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters/histograms for booking conversations.
type ConversationMetrics struct {
	turnsTotal      *prometheus.CounterVec
	llmLatency      *prometheus.HistogramVec
	fallbackTotal   prometheus.Counter
	sessionsCleaned prometheus.Counter
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookingai",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Total conversation turns processed",
		}, []string{"outcome", "step"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bookingai",
			Subsystem: "conversation",
			Name:      "llm_latency_seconds",
			Help:      "Latency of text-generation calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		fallbackTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bookingai",
			Subsystem: "conversation",
			Name:      "fallback_replies_total",
			Help:      "Total turns answered with the fixed fallback reply",
		}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bookingai",
			Subsystem: "session",
			Name:      "cleaned_total",
			Help:      "Total expired sessions removed by cleanup sweeps",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.llmLatency, m.fallbackTotal, m.sessionsCleaned)
	return m
}

func (m *ConversationMetrics) ObserveTurn(outcome, step string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(outcome, step).Inc()
}

func (m *ConversationMetrics) ObserveLLMLatency(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *ConversationMetrics) ObserveFallback() {
	if m == nil {
		return
	}
	m.fallbackTotal.Inc()
}

func (m *ConversationMetrics) ObserveCleanup(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.sessionsCleaned.Add(float64(count))
}

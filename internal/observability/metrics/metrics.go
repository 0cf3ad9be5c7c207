package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters/histograms for the qualification flow.
type ConversationMetrics struct {
	turnsTotal       *prometheus.CounterVec
	leadsTotal       *prometheus.CounterVec
	dedupSuppressed  prometheus.Counter
	moderationBlocks *prometheus.CounterVec
	generationErrors prometheus.Counter
	turnLatency      prometheus.Histogram
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadqual",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Total conversation turns processed",
		}, []string{"status"}),
		leadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadqual",
			Subsystem: "leads",
			Name:      "processed_total",
			Help:      "Total leads stored and routed",
		}, []string{"lead_type", "trigger"}),
		dedupSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leadqual",
			Subsystem: "leads",
			Name:      "dedup_suppressed_total",
			Help:      "Lead processing attempts suppressed by the dedup guard",
		}),
		moderationBlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadqual",
			Subsystem: "conversation",
			Name:      "moderation_blocks_total",
			Help:      "Messages rejected by input or output moderation",
		}, []string{"direction"}),
		generationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leadqual",
			Subsystem: "conversation",
			Name:      "generation_errors_total",
			Help:      "Response generation failures",
		}),
		turnLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leadqual",
			Subsystem: "conversation",
			Name:      "turn_latency_seconds",
			Help:      "Latency of a full conversation turn",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.leadsTotal, m.dedupSuppressed, m.moderationBlocks, m.generationErrors, m.turnLatency)
	return m
}

func (m *ConversationMetrics) ObserveTurn(status string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(status).Inc()
	m.turnLatency.Observe(seconds)
}

func (m *ConversationMetrics) ObserveLeadProcessed(leadType, trigger string) {
	if m == nil {
		return
	}
	m.leadsTotal.WithLabelValues(leadType, trigger).Inc()
}

func (m *ConversationMetrics) ObserveDedupSuppressed() {
	if m == nil {
		return
	}
	m.dedupSuppressed.Inc()
}

func (m *ConversationMetrics) ObserveModerationBlock(direction string) {
	if m == nil {
		return
	}
	m.moderationBlocks.WithLabelValues(direction).Inc()
}

func (m *ConversationMetrics) ObserveGenerationError() {
	if m == nil {
		return
	}
	m.generationErrors.Inc()
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MessagesConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_messages_consumed_total",
			Help: "Total number of messages pulled from the stream",
		},
		[]string{"topic"},
	)
	MessagesSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_messages_skipped_total",
			Help: "Total number of messages skipped for carrying no user content",
		},
		[]string{"topic"},
	)
	AgentInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_agent_invocations_total",
			Help: "Total number of agent invocations by outcome",
		},
		[]string{"outcome"},
	)
	AgentInvocationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bridge_agent_invocation_duration_seconds",
			Help:    "Agent invocation duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)
	RepliesPublishedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_replies_published_total",
			Help: "Total number of agent replies republished to the stream",
		},
	)
	DispatchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_dispatch_errors_total",
			Help: "Total number of per-message dispatch errors by stage",
		},
		[]string{"stage"},
	)
)

// InitMetrics registers all bridge metrics with the default registry.
// Call once at process start.
func InitMetrics() {
	prometheus.MustRegister(MessagesConsumedTotal)
	prometheus.MustRegister(MessagesSkippedTotal)
	prometheus.MustRegister(AgentInvocationsTotal)
	prometheus.MustRegister(AgentInvocationDuration)
	prometheus.MustRegister(RepliesPublishedTotal)
	prometheus.MustRegister(DispatchErrorsTotal)
}

// ConsumeMessage records one message pulled from the stream.
func ConsumeMessage(topic string) {
	MessagesConsumedTotal.WithLabelValues(topic).Inc()
}

// SkipMessage records one message skipped by the classifier.
func SkipMessage(topic string) {
	MessagesSkippedTotal.WithLabelValues(topic).Inc()
}

// ObserveAgentInvocation records one agent call with its duration.
func ObserveAgentInvocation(outcome string, seconds float64) {
	AgentInvocationsTotal.WithLabelValues(outcome).Inc()
	AgentInvocationDuration.Observe(seconds)
}

// PublishReply records one successfully republished reply.
func PublishReply() {
	RepliesPublishedTotal.Inc()
}

// DispatchError records one recovered per-message failure.
func DispatchError(stage string) {
	DispatchErrorsTotal.WithLabelValues(stage).Inc()
}

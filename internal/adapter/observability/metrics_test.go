package observability_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/msk-agent-bridge/internal/adapter/observability"
)

func TestMessageFlowCounters(t *testing.T) {
	before := testutil.ToFloat64(observability.MessagesConsumedTotal.WithLabelValues("t1"))
	observability.ConsumeMessage("t1")
	observability.ConsumeMessage("t1")
	assert.Equal(t, before+2, testutil.ToFloat64(observability.MessagesConsumedTotal.WithLabelValues("t1")))

	skipped := testutil.ToFloat64(observability.MessagesSkippedTotal.WithLabelValues("t1"))
	observability.SkipMessage("t1")
	assert.Equal(t, skipped+1, testutil.ToFloat64(observability.MessagesSkippedTotal.WithLabelValues("t1")))
}

func TestAgentInvocationMetrics(t *testing.T) {
	before := testutil.ToFloat64(observability.AgentInvocationsTotal.WithLabelValues("success"))
	observability.ObserveAgentInvocation("success", 1.25)
	assert.Equal(t, before+1, testutil.ToFloat64(observability.AgentInvocationsTotal.WithLabelValues("success")))

	failures := testutil.ToFloat64(observability.AgentInvocationsTotal.WithLabelValues("error"))
	observability.ObserveAgentInvocation("error", 0.1)
	assert.Equal(t, failures+1, testutil.ToFloat64(observability.AgentInvocationsTotal.WithLabelValues("error")))
}

func TestDispatchAndPublishCounters(t *testing.T) {
	invoke := testutil.ToFloat64(observability.DispatchErrorsTotal.WithLabelValues("invoke"))
	observability.DispatchError("invoke")
	assert.Equal(t, invoke+1, testutil.ToFloat64(observability.DispatchErrorsTotal.WithLabelValues("invoke")))

	published := testutil.ToFloat64(observability.RepliesPublishedTotal)
	observability.PublishReply()
	assert.Equal(t, published+1, testutil.ToFloat64(observability.RepliesPublishedTotal))
}

package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	adapterobs "github.com/fairyhunter13/msk-agent-bridge/internal/adapter/observability"
	"github.com/fairyhunter13/msk-agent-bridge/internal/config"
	"github.com/fairyhunter13/msk-agent-bridge/internal/domain"
	"github.com/fairyhunter13/msk-agent-bridge/internal/observability"
)

// Bridge runs the consume-classify-dispatch loop between the stream
// and the agent. It owns the process's single consumer and producer
// handle and tears both down exactly once on any exit path.
type Bridge struct {
	consumer domain.StreamConsumer
	producer domain.StreamProducer
	agent    domain.AgentClient

	topic        string
	replyEnabled bool
	agentTimeout time.Duration
}

// NewBridge wires the dispatch loop. The producer may be nil when
// reply publishing is disabled and no producer was created.
func NewBridge(consumer domain.StreamConsumer, producer domain.StreamProducer, agent domain.AgentClient, cfg config.Config) *Bridge {
	return &Bridge{
		consumer:     consumer,
		producer:     producer,
		agent:        agent,
		topic:        cfg.KafkaTopic,
		replyEnabled: cfg.ReplyEnabled() && producer != nil,
		agentTimeout: cfg.AgentTimeout,
	}
}

// Run consumes messages until the context is cancelled or the consumer
// connection ends, then performs the ordered shutdown of both streams.
// Failures inside a single message's processing never terminate the
// loop; only errors from the stream itself do.
func (b *Bridge) Run(ctx domain.Context) error {
	slog.Info("bridge ready and listening for messages", slog.String("topic", b.topic))

	var runErr error
	for {
		msg, err := b.consumer.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				slog.Info("interrupt received, shutting down")
			} else {
				slog.Error("consumer stream ended", slog.Any("error", err))
				runErr = err
			}
			break
		}
		b.process(ctx, msg)
	}

	b.shutdown()
	return runErr
}

// process handles one delivered message end to end. Every error in
// here is logged and swallowed: one bad message must never terminate
// the loop.
func (b *Bridge) process(ctx domain.Context, msg domain.RawMessage) {
	lg := observability.LoggerFromContext(ctx).With(
		slog.String("topic", msg.Topic),
		slog.Int("partition", int(msg.Partition)),
		slog.Int64("offset", msg.Offset),
	)
	ctx = observability.ContextWithLogger(ctx, lg)

	adapterobs.ConsumeMessage(msg.Topic)
	lg.Info("received message", slog.Int("value_size", len(msg.Value)))

	content, ok := ExtractContent(msg.Value)
	if !ok {
		adapterobs.SkipMessage(msg.Topic)
		lg.Info("no user content in message, skipping")
		return
	}
	lg.Info("user message extracted", slog.String("content", content))

	reply, err := b.invoke(ctx, content)
	if err != nil {
		adapterobs.DispatchError("invoke")
		lg.Error("agent invocation failed",
			slog.String("content", content),
			slog.Any("error", err))
		return
	}
	lg.Info("assistant reply", slog.String("content", reply))

	if !b.replyEnabled {
		return
	}
	if err := b.publishReply(ctx, msg.Key, reply); err != nil {
		// Non-fatal: the reply is already in the log, only the
		// optional republish failed.
		adapterobs.DispatchError("publish")
		lg.Error("reply publish failed", slog.Any("error", err))
		return
	}
	adapterobs.PublishReply()
	lg.Info("reply published")
}

// invoke calls the agent under the configured timeout so one slow call
// cannot stall the consume loop indefinitely.
func (b *Bridge) invoke(ctx domain.Context, content string) (string, error) {
	if b.agentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.agentTimeout)
		defer cancel()
	}
	start := time.Now()
	reply, err := b.agent.Invoke(ctx, content)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	adapterobs.ObserveAgentInvocation(outcome, time.Since(start).Seconds())
	return reply, err
}

func (b *Bridge) publishReply(ctx domain.Context, key []byte, reply string) error {
	value, err := json.Marshal(domain.Envelope{Type: domain.TypeAssistantMessage, Content: reply})
	if err != nil {
		return err
	}
	return b.producer.Publish(ctx, key, value)
}

// shutdown stops the producer then the consumer. Both stops are always
// attempted; a failure in one is logged and never prevents the other.
func (b *Bridge) shutdown() {
	if b.producer != nil {
		if err := b.producer.Stop(); err != nil {
			slog.Error("producer stop failed", slog.Any("error", err))
		}
	}
	if err := b.consumer.Stop(); err != nil {
		slog.Error("consumer stop failed", slog.Any("error", err))
	}
	slog.Info("consumer and producer stopped")
}

package msk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/msk-agent-bridge/internal/config"
	"github.com/fairyhunter13/msk-agent-bridge/internal/domain"
)

// Consumer wraps a Kafka group consumer subscribed to one topic. It
// yields messages one at a time through Next and commits consumption
// progress automatically, which makes delivery at-least-once: a crash
// between processing and the next commit may redeliver.
type Consumer struct {
	client  *kgo.Client
	topic   string
	groupID string

	// pending holds records fetched but not yet handed out.
	pending  []*kgo.Record
	stopOnce sync.Once
}

var _ domain.StreamConsumer = (*Consumer)(nil)

// commonClientOpts assembles the connection options shared by the
// consumer and producer: seed brokers, SASL_SSL with per-handshake IAM
// tokens, and OpenTelemetry instrumentation hooks.
func commonClientOpts(cfg config.Config, tp domain.TokenProvider, clientID string) []kgo.Opt {
	kotelService := kotel.NewKotel(
		kotel.WithTracer(kotel.NewTracer(
			kotel.TracerProvider(otel.GetTracerProvider()),
		)),
	)
	return []kgo.Opt{
		kgo.SeedBrokers(cfg.KafkaBrokers...),
		kgo.ClientID(clientID),
		kgo.SASL(SASLMechanism(tp)),
		kgo.DialTLSConfig(BuildTLSConfig(cfg)),
		kgo.DialTimeout(cfg.KafkaDialTimeout),
		kgo.WithHooks(kotelService.Hooks()...),
	}
}

// NewConsumer establishes the subscribed connection. It fails with a
// connection error when the broker cannot be reached or authentication
// is rejected; the bridge cannot proceed without a consumer.
func NewConsumer(cfg config.Config, tp domain.TokenProvider) (*Consumer, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("%w: no seed brokers provided", domain.ErrConnection)
	}

	clientID := fmt.Sprintf("%s-consumer-%s", cfg.KafkaClientIDPrefix, uuid.NewString()[:8])
	slog.Info("creating msk consumer",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group_id", cfg.KafkaGroupID),
		slog.String("client_id", clientID))

	opts := append(commonClientOpts(cfg, tp, clientID),
		kgo.ConsumerGroup(cfg.KafkaGroupID),
		kgo.ConsumeTopics(cfg.KafkaTopic),
		// Start at the newest offset; a reconnect begins a logically
		// new sequence at the same policy.
		kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
		kgo.AutoCommitInterval(cfg.KafkaAutoCommitInterval),
		kgo.SessionTimeout(cfg.KafkaSessionTimeout),
	)

	client, err := kgo.NewClient(opts...)
	if err != nil {
		slog.Error("msk consumer client creation failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: msk consumer client: %v", domain.ErrConnection, err)
	}

	// Surface unreachable brokers and rejected handshakes at startup
	// instead of inside the first poll.
	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.KafkaDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		slog.Error("msk broker ping failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: broker ping: %v", domain.ErrConnection, err)
	}

	slog.Info("connected to msk topic",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group_id", cfg.KafkaGroupID))
	return &Consumer{client: client, topic: cfg.KafkaTopic, groupID: cfg.KafkaGroupID}, nil
}

// Next blocks until a message is available, the context is cancelled,
// or the connection is closed. Transient fetch errors are logged and
// polling continues; the franz-go client reconnects internally.
func (c *Consumer) Next(ctx domain.Context) (domain.RawMessage, error) {
	for len(c.pending) == 0 {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return domain.RawMessage{}, fmt.Errorf("%w: consumer closed", domain.ErrConnection)
		}
		if err := ctx.Err(); err != nil {
			return domain.RawMessage{}, err
		}
		for _, fe := range fetches.Errors() {
			if errors.Is(fe.Err, context.Canceled) || errors.Is(fe.Err, context.DeadlineExceeded) {
				return domain.RawMessage{}, fe.Err
			}
			slog.Warn("fetch error, continuing to poll",
				slog.String("topic", fe.Topic),
				slog.Int("partition", int(fe.Partition)),
				slog.Any("error", fe.Err))
		}
		fetches.EachRecord(func(r *kgo.Record) {
			c.pending = append(c.pending, r)
		})
	}

	r := c.pending[0]
	c.pending = c.pending[1:]
	return domain.RawMessage{
		Topic:     r.Topic,
		Partition: r.Partition,
		Offset:    r.Offset,
		Key:       r.Key,
		Value:     r.Value,
	}, nil
}

// Stop releases the connection. Safe to call more than once and after
// a failed start.
func (c *Consumer) Stop() error {
	c.stopOnce.Do(func() {
		slog.Info("stopping msk consumer", slog.String("group_id", c.groupID))
		c.client.Close()
	})
	return nil
}

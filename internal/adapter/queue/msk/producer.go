package msk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/fairyhunter13/msk-agent-bridge/internal/config"
	"github.com/fairyhunter13/msk-agent-bridge/internal/domain"
)

// Producer wraps a Kafka producer publishing agent replies. Publishes
// confirm only after full in-sync-replica acknowledgment, so a
// returned nil means the broker has durably accepted the record.
type Producer struct {
	client   *kgo.Client
	topic    string
	stopOnce sync.Once
}

var _ domain.StreamProducer = (*Producer)(nil)

// NewProducer establishes the publishing connection with the same
// security wiring as the consumer. The target topic is the reply topic
// when configured, else the main topic.
func NewProducer(cfg config.Config, tp domain.TokenProvider) (*Producer, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("%w: no seed brokers provided", domain.ErrConnection)
	}

	topic := cfg.KafkaReplyTopic
	if topic == "" {
		topic = cfg.KafkaTopic
	}
	clientID := fmt.Sprintf("%s-producer-%s", cfg.KafkaClientIDPrefix, uuid.NewString()[:8])
	slog.Info("creating msk producer",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.String("topic", topic),
		slog.String("client_id", clientID))

	opts := append(commonClientOpts(cfg, tp, clientID),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)

	client, err := kgo.NewClient(opts...)
	if err != nil {
		slog.Error("msk producer client creation failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: msk producer client: %v", domain.ErrConnection, err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), cfg.KafkaDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		slog.Error("msk broker ping failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: broker ping: %v", domain.ErrConnection, err)
	}

	slog.Info("msk producer created successfully", slog.String("topic", topic))
	return &Producer{client: client, topic: topic}, nil
}

// Publish synchronously produces one record and waits for the acks=all
// confirmation. Failures are dispatch errors: the caller logs them and
// the loop continues.
func (p *Producer) Publish(ctx domain.Context, key, value []byte) error {
	rec := &kgo.Record{Key: key, Value: value}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("%w: produce to %s: %v", domain.ErrDispatch, p.topic, err)
	}
	return nil
}

// Stop releases the connection. Safe to call more than once and after
// a failed start.
func (p *Producer) Stop() error {
	p.stopOnce.Do(func() {
		slog.Info("stopping msk producer", slog.String("topic", p.topic))
		p.client.Close()
	})
	return nil
}

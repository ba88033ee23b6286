// Package main provides the bridge application entry point.
// The bridge consumes user messages from an MSK topic, forwards them to
// the conversational agent, and logs or republishes the replies.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fairyhunter13/msk-agent-bridge/internal/adapter/ai/real"
	"github.com/fairyhunter13/msk-agent-bridge/internal/adapter/observability"
	"github.com/fairyhunter13/msk-agent-bridge/internal/adapter/queue/msk"
	"github.com/fairyhunter13/msk-agent-bridge/internal/config"
	"github.com/fairyhunter13/msk-agent-bridge/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup logging
	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	// Register Prometheus metrics and expose them on a dedicated
	// /metrics endpoint.
	observability.InitMetrics()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.MetricsPort), mux); err != nil {
			slog.Error("metrics server error", slog.Any("error", err))
		}
	}()

	// Enable tracing for consume/dispatch spans when an OTLP endpoint
	// is configured. The Kafka clients attach kotel hooks to the same
	// provider.
	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	slog.Info("starting bridge",
		slog.String("env", cfg.AppEnv),
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group_id", cfg.KafkaGroupID),
		slog.String("region", cfg.AWSRegion))

	// An interrupt must unblock the consume loop's next suspension
	// point so the shutdown sequence can run.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	tokenProvider := msk.IAMTokenProvider{Region: cfg.AWSRegion}

	producer, err := msk.NewProducer(cfg, tokenProvider)
	if err != nil {
		slog.Error("msk producer init failed", slog.Any("error", err))
		os.Exit(1)
	}

	consumer, err := msk.NewConsumer(cfg, tokenProvider)
	if err != nil {
		slog.Error("msk consumer init failed", slog.Any("error", err))
		if stopErr := producer.Stop(); stopErr != nil {
			slog.Error("producer stop failed", slog.Any("error", stopErr))
		}
		os.Exit(1)
	}

	agent := real.New(cfg)

	bridge := usecase.NewBridge(consumer, producer, agent, cfg)
	if err := bridge.Run(ctx); err != nil {
		slog.Error("bridge terminated with error", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("bridge stopped")
}

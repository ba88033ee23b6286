// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"dev"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"9090"`

	// Broker connection
	KafkaBrokers        []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9198"`
	KafkaTopic          string   `env:"KAFKA_TOPIC" envDefault:"mcp_agent_queen"`
	KafkaGroupID        string   `env:"KAFKA_GROUP_ID" envDefault:"mcp_agent_consumer"`
	KafkaClientIDPrefix string   `env:"KAFKA_CLIENT_ID_PREFIX" envDefault:"mcp_agent"`
	// KafkaReplyTopic, when set, makes the bridge republish each agent
	// reply as an assistant_message envelope. Empty means log-only.
	KafkaReplyTopic string `env:"KAFKA_REPLY_TOPIC"`
	AWSRegion       string `env:"AWS_REGION" envDefault:"ap-south-1"`
	// KafkaTLSInsecureSkipVerify disables certificate and hostname
	// verification. The managed broker is reached through a public
	// endpoint whose certificate identity does not match the connection
	// hostname, so this defaults to true for that deployment. Operators
	// with a matching certificate chain should set it to false.
	KafkaTLSInsecureSkipVerify bool          `env:"KAFKA_TLS_INSECURE_SKIP_VERIFY" envDefault:"true"`
	KafkaDialTimeout           time.Duration `env:"KAFKA_DIAL_TIMEOUT" envDefault:"10s"`
	KafkaSessionTimeout        time.Duration `env:"KAFKA_SESSION_TIMEOUT" envDefault:"30s"`
	KafkaAutoCommitInterval    time.Duration `env:"KAFKA_AUTO_COMMIT_INTERVAL" envDefault:"5s"`

	// Agent capability
	AgentAPIKey      string `env:"AGENT_API_KEY"`
	AgentBaseURL     string `env:"AGENT_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	AgentModel       string `env:"AGENT_MODEL" envDefault:"anthropic/claude-3.7-sonnet"`
	AgentInstruction string `env:"AGENT_INSTRUCTION" envDefault:"You are a helpful AI assistant. Be friendly, helpful, and engaging in your responses."`
	AgentMaxTokens   int    `env:"AGENT_MAX_TOKENS" envDefault:"1024"`
	// AgentTimeout bounds a single agent invocation so one slow call
	// cannot stall the consume loop indefinitely. Zero disables it.
	AgentTimeout time.Duration `env:"AGENT_TIMEOUT" envDefault:"120s"`
	// Agent Backoff Configuration
	AgentBackoffMaxElapsedTime  time.Duration `env:"AGENT_BACKOFF_MAX_ELAPSED_TIME" envDefault:"90s"`
	AgentBackoffInitialInterval time.Duration `env:"AGENT_BACKOFF_INITIAL_INTERVAL" envDefault:"2s"`
	AgentBackoffMaxInterval     time.Duration `env:"AGENT_BACKOFF_MAX_INTERVAL" envDefault:"20s"`
	AgentBackoffMultiplier      float64       `env:"AGENT_BACKOFF_MULTIPLIER" envDefault:"1.5"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"msk-agent-bridge"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// ReplyEnabled reports whether agent replies should be republished.
func (c Config) ReplyEnabled() bool { return c.KafkaReplyTopic != "" }

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// GetAgentBackoffConfig returns backoff configuration appropriate for the
// current environment. In test environments, uses much shorter timeouts
// for faster test execution.
func (c Config) GetAgentBackoffConfig() (maxElapsedTime, initialInterval, maxInterval time.Duration, multiplier float64) {
	if c.IsTest() {
		return 2 * time.Second, 10 * time.Millisecond, 100 * time.Millisecond, 2.0
	}
	return c.AgentBackoffMaxElapsedTime, c.AgentBackoffInitialInterval, c.AgentBackoffMaxInterval, c.AgentBackoffMultiplier
}

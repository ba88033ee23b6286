// Package domain holds the bridge's core types, error taxonomy, and ports.
package domain

import (
	"context"
	"errors"
)

// Error taxonomy (sentinels)
var (
	// ErrAuthProvider means token generation failed. Fatal to the
	// connection attempt in progress; not retried within this core.
	ErrAuthProvider = errors.New("auth provider failure")
	// ErrConnection means the broker was unreachable or the handshake
	// was rejected. Fatal at startup.
	ErrConnection = errors.New("broker connection failure")
	// ErrClassification means a payload was malformed during extraction.
	// Recovered locally; the message is skipped.
	ErrClassification = errors.New("payload classification failure")
	// ErrDispatch means agent invocation or reply publishing failed for
	// one message. Recovered locally; the loop continues.
	ErrDispatch = errors.New("dispatch failure")
	// ErrShutdown means a stop call failed. Logged; never prevents the
	// other connection's shutdown attempt.
	ErrShutdown = errors.New("shutdown failure")
)

// Envelope type tags recognized on the wire.
const (
	TypeUserMessage      = "user_message"
	TypeUser             = "user"
	TypeAssistantMessage = "assistant_message"
)

// Envelope is the structured wire shape carrying conversational intent
// over the stream. Producers may also emit bare text not conforming to
// this envelope; the classifier tolerates both.
type Envelope struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// RawMessage is one opaque unit delivered by the stream. Consumed
// exactly once per delivery; under auto-commit the broker may redeliver
// after a crash, so delivery is at-least-once overall.
type RawMessage struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
}

// Ports

// TokenProvider generates a short-lived broker auth token on demand.
// Implementations must not cache: every handshake gets a fresh token.
type TokenProvider interface {
	Token(ctx Context) (string, error)
}

// StreamConsumer is a long-lived subscription to one topic under one
// consumer group.
type StreamConsumer interface {
	// Next blocks until a message is delivered, the context is
	// cancelled, or the connection is closed.
	Next(ctx Context) (RawMessage, error)
	// Stop releases the connection. Idempotent.
	Stop() error
}

// StreamProducer publishes reply messages. Publish confirms only after
// the broker reports full in-sync-replica acknowledgment.
type StreamProducer interface {
	Publish(ctx Context, key, value []byte) error
	// Stop releases the connection. Idempotent.
	Stop() error
}

// AgentClient is the external conversational agent capability.
type AgentClient interface {
	// Invoke sends a user prompt to the agent and returns its reply.
	Invoke(ctx Context, prompt string) (string, error)
}

// Context is an alias to allow decoupling from std context in domain.
// Adapters and usecases pass context.Context through.
type Context = context.Context

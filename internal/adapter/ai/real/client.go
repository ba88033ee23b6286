// Package real implements the agent capability backed by an
// OpenAI-compatible chat completions API.
package real

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"log/slog"

	"github.com/fairyhunter13/msk-agent-bridge/internal/config"
	"github.com/fairyhunter13/msk-agent-bridge/internal/domain"
	"github.com/fairyhunter13/msk-agent-bridge/internal/observability"
)

// Client implements domain.AgentClient over HTTP chat completions.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

var _ domain.AgentClient = (*Client)(nil)

// New constructs an agent client. The HTTP timeout tracks the agent
// invocation timeout so the transport never outlives the loop's
// cancellation scope.
func New(cfg config.Config) *Client {
	timeout := cfg.AgentTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{cfg: cfg, hc: &http.Client{Timeout: timeout}}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// getBackoffConfig returns a configured ExponentialBackOff based on the
// current environment.
func (c *Client) getBackoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsedTime, initialInterval, maxInterval, multiplier := c.cfg.GetAgentBackoffConfig()
	expo.MaxElapsedTime = maxElapsedTime
	expo.InitialInterval = initialInterval
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

// readSnippet reads up to n bytes from r for error diagnostics.
func readSnippet(r io.Reader, n int64) string {
	b, _ := io.ReadAll(io.LimitReader(r, n))
	return string(b)
}

// Invoke sends the extracted user content to the agent and returns its
// textual reply. Transient upstream failures (network errors, 429,
// 5xx) are retried with exponential backoff; everything else fails
// immediately.
func (c *Client) Invoke(ctx domain.Context, prompt string) (string, error) {
	if c.cfg.AgentAPIKey == "" {
		return "", fmt.Errorf("%w: AGENT_API_KEY missing", domain.ErrDispatch)
	}

	lg := observability.LoggerFromContext(ctx)
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.AgentModel,
		Messages: []chatMessage{
			{Role: "system", Content: c.cfg.AgentInstruction},
			{Role: "user", Content: prompt},
		},
		MaxTokens: c.cfg.AgentMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal chat request: %v", domain.ErrDispatch, err)
	}

	var reply string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AgentBaseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.AgentAPIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.hc.Do(req)
		if err != nil {
			lg.Warn("agent api request failed, will retry", slog.Any("error", err))
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			snippet := readSnippet(resp.Body, 512)
			lg.Warn("agent api transient error, will retry",
				slog.Int("status", resp.StatusCode),
				slog.String("body", snippet))
			return fmt.Errorf("agent api status %d: %s", resp.StatusCode, snippet)
		}
		if resp.StatusCode != http.StatusOK {
			snippet := readSnippet(resp.Body, 512)
			return backoff.Permanent(fmt.Errorf("agent api status %d: %s", resp.StatusCode, snippet))
		}

		var cr chatResponse
		if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
			return backoff.Permanent(fmt.Errorf("decode chat response: %w", err))
		}
		if len(cr.Choices) == 0 {
			return backoff.Permanent(errors.New("agent api returned no choices"))
		}
		reply = cr.Choices[0].Message.Content
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(c.getBackoffConfig(), ctx)); err != nil {
		return "", fmt.Errorf("%w: agent invoke: %v", domain.ErrDispatch, err)
	}
	return reply, nil
}

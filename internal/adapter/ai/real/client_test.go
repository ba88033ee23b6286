package real_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/msk-agent-bridge/internal/adapter/ai/real"
	"github.com/fairyhunter13/msk-agent-bridge/internal/config"
	"github.com/fairyhunter13/msk-agent-bridge/internal/domain"
)

func testConfig(baseURL string) config.Config {
	return config.Config{
		AppEnv:           "test",
		AgentAPIKey:      "test-key",
		AgentBaseURL:     baseURL,
		AgentModel:       "anthropic/claude-3.7-sonnet",
		AgentInstruction: "You are a helpful AI assistant.",
		AgentMaxTokens:   256,
		AgentTimeout:     5 * time.Second,
	}
}

func chatReply(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func TestInvoke_HappyPath(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(chatReply("hi there")))
	}))
	defer srv.Close()

	c := real.New(testConfig(srv.URL))
	reply, err := c.Invoke(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)

	assert.Equal(t, "anthropic/claude-3.7-sonnet", gotBody["model"])
	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	user := msgs[1].(map[string]any)
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, "hello", user["content"])
}

func TestInvoke_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(chatReply("recovered")))
	}))
	defer srv.Close()

	c := real.New(testConfig(srv.URL))
	reply, err := c.Invoke(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "recovered", reply)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&attempts), int32(3))
}

func TestInvoke_ClientErrorIsPermanent(t *testing.T) {
	t.Parallel()

	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer srv.Close()

	c := real.New(testConfig(srv.URL))
	_, err := c.Invoke(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDispatch)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts), "4xx must not be retried")
}

func TestInvoke_MissingAPIKey(t *testing.T) {
	t.Parallel()

	cfg := testConfig("http://localhost:0")
	cfg.AgentAPIKey = ""
	c := real.New(cfg)

	_, err := c.Invoke(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDispatch)
}

func TestInvoke_NoChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := real.New(testConfig(srv.URL))
	_, err := c.Invoke(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDispatch)
}

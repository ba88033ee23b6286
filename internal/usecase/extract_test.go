package usecase_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/msk-agent-bridge/internal/usecase"
)

func TestExtractContent_EnvelopeShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		raw         string
		wantContent string
		wantOK      bool
	}{
		{
			name:        "user_message envelope",
			raw:         `{"type":"user_message","content":"hello"}`,
			wantContent: "hello",
			wantOK:      true,
		},
		{
			name:        "user envelope",
			raw:         `{"type":"user","content":"what's the weather?"}`,
			wantContent: "what's the weather?",
			wantOK:      true,
		},
		{
			name:   "system envelope is ignored",
			raw:    `{"type":"system","content":"ping"}`,
			wantOK: false,
		},
		{
			name:   "object without type tag is ignored",
			raw:    `{"content":"hello"}`,
			wantOK: false,
		},
		{
			name:   "recognized tag without content is ignored",
			raw:    `{"type":"user_message"}`,
			wantOK: false,
		},
		{
			name:   "empty content is ignored",
			raw:    `{"type":"user","content":""}`,
			wantOK: false,
		},
		{
			name:   "non-string content is ignored",
			raw:    `{"type":"user","content":42}`,
			wantOK: false,
		},
		{
			name:        "bare text falls back verbatim",
			raw:         "hello",
			wantContent: "hello",
			wantOK:      true,
		},
		{
			name:        "JSON-encoded envelope string",
			raw:         `"{\"type\":\"user\",\"content\":\"hi\"}"`,
			wantContent: "hi",
			wantOK:      true,
		},
		{
			name:   "JSON-encoded untagged object string is ignored",
			raw:    `"{\"foo\":\"bar\"}"`,
			wantOK: false,
		},
		{
			name:        "JSON string that is not an envelope stays verbatim",
			raw:         `"just a plain sentence"`,
			wantContent: "just a plain sentence",
			wantOK:      true,
		},
		{
			name:   "empty input",
			raw:    "",
			wantOK: false,
		},
		{
			name:   "whitespace input",
			raw:    "  \n\t ",
			wantOK: false,
		},
		{
			name:   "JSON null",
			raw:    "null",
			wantOK: false,
		},
		{
			name:   "JSON number carries no intent",
			raw:    "42",
			wantOK: false,
		},
		{
			name:   "JSON array carries no intent",
			raw:    `["hello"]`,
			wantOK: false,
		},
		{
			name:        "invalid JSON with braces stays verbatim",
			raw:         `{"type": "user", broken`,
			wantContent: `{"type": "user", broken`,
			wantOK:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			content, ok := usecase.ExtractContent([]byte(tt.raw))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantContent, content)
			} else {
				assert.Empty(t, content)
			}
		})
	}
}

func TestExtractContent_IdempotentUnderJSONRoundTrip(t *testing.T) {
	t.Parallel()

	// A JSON-encoded envelope string must extract identically to the
	// decoded envelope itself.
	envelope := `{"type":"user_message","content":"round trip"}`
	encoded, err := json.Marshal(envelope)
	require.NoError(t, err)

	direct, okDirect := usecase.ExtractContent([]byte(envelope))
	viaString, okString := usecase.ExtractContent(encoded)

	require.True(t, okDirect)
	require.True(t, okString)
	assert.Equal(t, direct, viaString)
	assert.Equal(t, "round trip", direct)
}

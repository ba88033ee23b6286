// Package usecase contains the bridge's core processing logic: payload
// classification and the consume-dispatch loop.
package usecase

import (
	"encoding/json"
	"strings"

	"github.com/fairyhunter13/msk-agent-bridge/internal/domain"
)

// payloadKind tags the decoded shape of a raw message value.
type payloadKind int

const (
	kindAbsent payloadKind = iota
	kindObject
	kindText
)

// decodedPayload is the tagged variant produced by decodeValue. Exactly
// one of object/text is meaningful depending on kind.
type decodedPayload struct {
	kind   payloadKind
	object map[string]any
	text   string
}

// decodeValue classifies a raw value as a structured object, plain
// text, or nothing. Bytes that are not valid JSON are plain text;
// JSON scalars other than strings (numbers, booleans, null) and JSON
// arrays carry no conversational intent and decode to absent.
func decodeValue(raw []byte) decodedPayload {
	if strings.TrimSpace(string(raw)) == "" {
		return decodedPayload{kind: kindAbsent}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return decodedPayload{kind: kindText, text: string(raw)}
	}
	switch t := v.(type) {
	case map[string]any:
		return decodedPayload{kind: kindObject, object: t}
	case string:
		return decodedPayload{kind: kindText, text: t}
	default:
		return decodedPayload{kind: kindAbsent}
	}
}

// ExtractContent returns the user-intended text carried by a raw
// message value, or ok=false when the message carries none and should
// be skipped. Upstream producers emit either JSON envelopes
// ({"type":"user_message","content":...}), JSON-encoded strings that
// themselves contain an envelope, or bare text; all three shapes are
// accepted, and bare text falls back to being the content verbatim.
func ExtractContent(raw []byte) (string, bool) {
	switch p := decodeValue(raw); p.kind {
	case kindObject:
		return extractEnvelope(p.object)
	case kindText:
		// Text may be a JSON-encoded envelope one level down.
		if inner := decodeValue([]byte(p.text)); inner.kind == kindObject {
			return extractEnvelope(inner.object)
		}
		return p.text, p.text != ""
	default:
		return "", false
	}
}

// extractEnvelope applies the envelope rules to a structured mapping:
// a recognized type tag plus a non-empty string content field yields
// that content; anything else (system/control messages, missing or
// malformed content) yields absent.
func extractEnvelope(obj map[string]any) (string, bool) {
	tag, _ := obj["type"].(string)
	if tag != domain.TypeUserMessage && tag != domain.TypeUser {
		return "", false
	}
	content, ok := obj["content"].(string)
	if !ok || content == "" {
		return "", false
	}
	return content, true
}

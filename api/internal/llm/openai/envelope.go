package openai

import (
	"bytes"
	"encoding/json"
	"strings"

	"hint-gateway/api/internal/apierr"
)

// chatEnvelope is the minimal slice of the chat.completion response the
// gateway depends on. Everything else in the envelope is ignored.
type chatEnvelope struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	FinishReason string      `json:"finish_reason"`
	Message      chatMessage `json:"message"`
}

type chatMessage struct {
	Content chatContent `json:"content"`
	Refusal *string     `json:"refusal"`
}

// chatContent is the polymorphic assistant content: a plain string or an
// ordered list of parts, each optionally carrying a text sub-field. The
// variant is picked by inspecting the JSON node kind.
type chatContent struct {
	text    string
	isText  bool
	parts   []chatContentPart
	isParts bool
}

type chatContentPart struct {
	Text *string `json:"text"`
}

func (c *chatContent) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		c.isText = true
		return json.Unmarshal(b, &c.text)
	case '[':
		c.isParts = true
		return json.Unmarshal(b, &c.parts)
	}
	// null or an unknown node kind: leave the content unextractable.
	return nil
}

// extractContent pulls the assistant text out of the envelope.
//
// A string content is returned as-is. A parts list is concatenated in
// order, skipping parts without text, and returned trimmed when non-empty.
// A textual refusal counts as an extractable empty string (the model
// declined; that is not a transport error). Anything else is ok=false.
func extractContent(env chatEnvelope) (string, bool) {
	if len(env.Choices) == 0 {
		return "", false
	}
	msg := env.Choices[0].Message

	if msg.Content.isText {
		return msg.Content.text, true
	}
	if msg.Content.isParts {
		var b strings.Builder
		for _, p := range msg.Content.parts {
			if p.Text != nil {
				b.WriteString(*p.Text)
			}
		}
		if joined := strings.TrimSpace(b.String()); joined != "" {
			return joined, true
		}
	}
	if msg.Refusal != nil {
		return "", true
	}
	return "", false
}

// assistantText decodes the raw provider body and applies the truncation
// policy: finish_reason "length" with no visible output means the token
// ceiling ate the answer, which is diagnosed separately from a generically
// empty response.
func assistantText(op, raw string) (string, error) {
	var env chatEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return "", apierr.BadGateway(op+"_ERROR", "Unparsable response envelope",
			map[string]any{"raw": apierr.Trunc(raw, maxBodyDiag)})
	}

	finish := ""
	if len(env.Choices) > 0 {
		finish = env.Choices[0].FinishReason
	}
	content, ok := extractContent(env)

	if finish == "length" && (!ok || strings.TrimSpace(content) == "") {
		return "", apierr.BadGateway(op+"_TRUNCATED",
			"Model hit token limit before producing visible output. Increase max_completion_tokens and/or reduce reasoning_effort.",
			map[string]any{"finish_reason": finish})
	}
	if !ok || strings.TrimSpace(content) == "" {
		return "", apierr.BadGateway(op+"_EMPTY", "Empty content from OpenAI",
			map[string]any{"raw": apierr.Trunc(raw, maxBodyDiag)})
	}
	return content, nil
}

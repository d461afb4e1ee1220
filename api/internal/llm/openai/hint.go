package openai

import (
	"context"
	"encoding/json"
	"log"

	"hint-gateway/api/internal/apierr"
	"hint-gateway/api/internal/llm"
)

const (
	opChat = "OPENAI_CHAT"

	// Generous ceiling: reasoning models spend tokens before visible output.
	hintMaxCompletionTokens = 900
)

const hintSystemPrompt = `Ты ассистент на собеседовании.
Дай максимально конкретный ответ по тексту вопроса.

Верни строго JSON:
{"hint":"...","nextSteps":["...","..."]}

Без markdown. Без лишних полей.`

// HintFromTranscript asks the chat model for a concise interview hint over
// a question or speech transcript and validates the strict-JSON answer.
func (c *Client) HintFromTranscript(ctx context.Context, transcript, lang string) (llm.HintJSON, error) {
	if err := c.ensureKey(); err != nil {
		return llm.HintJSON{}, err
	}

	body := map[string]any{
		"model":                 c.chatModel,
		"reasoning_effort":      "minimal",
		"max_completion_tokens": hintMaxCompletionTokens,
		"messages": []any{
			map[string]any{"role": "system", "content": hintSystemPrompt},
			map[string]any{"role": "user", "content": "Текст вопроса/контекст:\n" + transcript},
		},
	}
	payload, _ := json.Marshal(body)

	raw, err := c.post(ctx, opChat, "/chat/completions", "application/json", payload)
	if err != nil {
		return llm.HintJSON{}, err
	}
	log.Printf("openai hint raw response: %s", apierr.Trunc(raw, maxBodyDiag))

	content, err := assistantText(opChat, raw)
	if err != nil {
		return llm.HintJSON{}, err
	}
	return decodeHint(opChat, content)
}

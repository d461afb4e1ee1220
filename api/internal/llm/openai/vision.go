package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"hint-gateway/api/internal/apierr"
	"hint-gateway/api/internal/llm"
	"hint-gateway/api/internal/util"
)

const (
	opVision = "OPENAI_VISION"

	// Vision answers are larger than text hints; the ceiling reflects that.
	visionMaxCompletionTokens = 1800

	// Payload guard so a screenshot never blows the provider body limit.
	maxImageBytes = 3_000_000
)

const visionSystemPrompt = `Ты ассистент на собеседовании. На входе: вопрос пользователя + один скриншот.

Сначала определи taskType:
LIVE_CODING | CODE_REVIEW | ARCHITECTURE | DEBUG | THEORY | UNKNOWN.

Правила:
- Если по скриншоту и вопросу НЕТ явной задачи (нет формулировки, нет кода/логов/диаграммы, или контекст обрывочный) — ставь UNKNOWN.
- Для НЕ-UNKNOWN: отвечай уверенно и конкретно, без "кажется/возможно", без вопросов к пользователю.
- Для UNKNOWN: НЕ придумывай детали. Дай:
  1) кратко: что видно и чего не хватает,
  2) 1–3 уточняющих вопроса (самые важные),
  3) что можно сделать прямо сейчас (общий лучший совет по теме).

Формат ответа: строго JSON по схеме.`

func snapshotSchema() map[string]any {
	stringArray := func() map[string]any {
		return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	}
	return map[string]any{
		"name": "universal_snapshot_response",
		"schema": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties": map[string]any{
				"taskType":  map[string]any{"type": "string", "enum": llm.TaskTypes},
				"output":    map[string]any{"type": "string"},
				"code":      map[string]any{"type": "string"},
				"checklist": stringArray(),
				"questions": stringArray(),
				"nextSteps": stringArray(),
			},
			"required": []string{"taskType", "output", "code", "checklist", "questions", "nextSteps"},
		},
	}
}

// AnalyzeScreenshot sends the question plus an embedded screenshot through
// a vision chat completion constrained by the snapshot json_schema. The
// image is rejected before any network activity when empty or oversized.
func (c *Client) AnalyzeScreenshot(ctx context.Context, image []byte, contentType, lang, question string) (llm.SnapshotJSON, error) {
	if err := c.ensureKey(); err != nil {
		return llm.SnapshotJSON{}, err
	}
	if len(image) == 0 {
		return llm.SnapshotJSON{}, apierr.BadRequest("BAD_IMAGE", "Image is empty")
	}
	if len(image) > maxImageBytes {
		return llm.SnapshotJSON{}, apierr.BadRequest("IMAGE_TOO_LARGE",
			fmt.Sprintf("Image too large (max 3MB). bytes=%d", len(image)))
	}

	mime := strings.TrimSpace(contentType)
	if mime == "" {
		mime = "image/png"
	}
	dataURL := util.DataURL(mime, image)

	userContent := []any{
		map[string]any{"type": "text", "text": "Вопрос:\n" + question + "\n\nДай ответ, используя скриншот как контекст."},
		map[string]any{"type": "image_url", "image_url": map[string]any{"url": dataURL, "detail": "high"}},
	}

	body := map[string]any{
		"model": c.chatModel,
		// Minimal effort is mandatory here: otherwise reasoning eats the
		// whole token budget and content comes back empty.
		"reasoning_effort":      "minimal",
		"max_completion_tokens": visionMaxCompletionTokens,
		"response_format": map[string]any{
			"type":        "json_schema",
			"json_schema": snapshotSchema(),
		},
		"messages": []any{
			map[string]any{"role": "system", "content": visionSystemPrompt},
			map[string]any{"role": "user", "content": userContent},
		},
	}
	payload, _ := json.Marshal(body)

	raw, err := c.post(ctx, opVision, "/chat/completions", "application/json", payload)
	if err != nil {
		return llm.SnapshotJSON{}, err
	}
	log.Printf("openai vision raw response: %s", apierr.Trunc(raw, maxBodyDiag))

	content, err := assistantText(opVision, raw)
	if err != nil {
		return llm.SnapshotJSON{}, err
	}
	log.Printf("openai vision content: %s", apierr.Trunc(content, maxContentDiag))

	return decodeSnapshot(opVision, content)
}

// Package gemini is the alternative text-hint engine. Vision and
// speech-to-text stay on OpenAI; this engine only answers transcript
// hints, with the response constrained to JSON via the response MIME type.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"hint-gateway/api/internal/llm"
	"hint-gateway/api/internal/util"
)

type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string { return "gemini" }

const hintSystemPrompt = `Ты ассистент на собеседовании.
Дай максимально конкретный ответ по тексту вопроса.
Верни строго JSON: {"hint":"...","nextSteps":["...","..."]}.
Любой текст вне JSON — ошибка.`

func (e *Engine) HintFromTranscript(ctx context.Context, transcript, lang string) (llm.HintJSON, error) {
	if e.APIKey == "" {
		return llm.HintJSON{}, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return llm.HintJSON{}, err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return llm.HintJSON{}, fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(hintSystemPrompt)},
	}

	resp, err := m.GenerateContent(ctx, genai.Text("Текст вопроса/контекст:\n"+transcript))
	if err != nil {
		return llm.HintJSON{}, err
	}

	txt := firstText(resp)
	if txt == "" {
		return llm.HintJSON{}, fmt.Errorf("gemini hint: empty response")
	}
	txt = util.StripCodeFences(strings.TrimSpace(txt))

	var hj llm.HintJSON
	if err := json.Unmarshal([]byte(txt), &hj); err != nil {
		return llm.HintJSON{}, fmt.Errorf("gemini hint: bad JSON: %w", err)
	}
	if strings.TrimSpace(hj.Hint) == "" {
		return llm.HintJSON{}, fmt.Errorf("gemini hint: missing hint field")
	}
	if hj.NextSteps == nil {
		hj.NextSteps = []string{}
	}
	return hj, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }

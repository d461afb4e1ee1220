// Package hint orchestrates one assistance request end to end: input
// validation, license gate, provider calls, typed result. Each call flows
// through once; no state is revisited and nothing is retried.
package hint

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"hint-gateway/api/internal/apierr"
	"hint-gateway/api/internal/license"
	"hint-gateway/api/internal/llm"
	"hint-gateway/api/internal/llm/openai"
)

const defaultLang = "ru"

type Service struct {
	licenses *license.Table
	openai   *openai.Client
	engines  *llm.Engines
	newID    func() string
}

func NewService(lic *license.Table, oa *openai.Client, engines *llm.Engines) *Service {
	return &Service{
		licenses: lic,
		openai:   oa,
		engines:  engines,
		newID:    uuid.NewString,
	}
}

// Do resolves one task to exactly one typed result or exactly one failure.
// Input shape is checked before the license gate; the license gate runs
// before any provider call.
func (s *Service) Do(ctx context.Context, licenseKey string, t Task) (*Result, error) {
	if err := validateInput(t); err != nil {
		return nil, err
	}
	if _, err := s.licenses.Authorize(licenseKey); err != nil {
		return nil, err
	}

	lang := ParseLang(t.Meta)

	switch t.Kind {
	case KindText:
		return s.text(ctx, t, lang)
	case KindVision:
		return s.vision(ctx, t, lang)
	case KindAudio:
		return s.audio(ctx, t, lang)
	default:
		return nil, apierr.BadRequest("BAD_TASK", "unknown task shape")
	}
}

func validateInput(t Task) error {
	switch t.Kind {
	case KindText:
		if strings.TrimSpace(t.Question) == "" {
			return apierr.BadRequest("BAD_QUESTION", "question is required")
		}
	case KindVision:
		if strings.TrimSpace(t.Question) == "" {
			return apierr.BadRequest("BAD_QUESTION", "question is required")
		}
		if len(t.Image) == 0 {
			return apierr.BadRequest("BAD_IMAGE", "Image is empty")
		}
	case KindAudio:
		if strings.TrimSpace(t.Transcript) == "" && len(t.Audio) == 0 {
			return apierr.BadRequest("BAD_AUDIO", "audio file or transcript is required")
		}
	}
	return nil
}

func (s *Service) text(ctx context.Context, t Task, lang string) (*Result, error) {
	eng, err := s.engines.Hint(t.Engine)
	if err != nil {
		return nil, apierr.BadRequest("BAD_LLM_NAME", err.Error())
	}
	hj, err := eng.HintFromTranscript(ctx, t.Question, lang)
	if err != nil {
		return nil, apierr.From(err, "LLM_HINT_ERROR")
	}
	return &Result{Kind: KindText, Hint: &HintResult{
		HintID:    s.newID(),
		Question:  t.Question,
		Hint:      hj.Hint,
		NextSteps: hj.NextSteps,
	}}, nil
}

func (s *Service) vision(ctx context.Context, t Task, lang string) (*Result, error) {
	sj, err := s.openai.AnalyzeScreenshot(ctx, t.Image, t.ImageMime, lang, t.Question)
	if err != nil {
		return nil, apierr.From(err, "OPENAI_VISION_ERROR")
	}
	return &Result{Kind: KindVision, Snapshot: &SnapshotResult{
		SnapshotID: s.newID(),
		TaskType:   sj.TaskType,
		Output:     sj.Output,
		Code:       sj.Code,
		Checklist:  sj.Checklist,
		Questions:  sj.Questions,
		NextSteps:  sj.NextSteps,
	}}, nil
}

func (s *Service) audio(ctx context.Context, t Task, lang string) (*Result, error) {
	transcript := strings.TrimSpace(t.Transcript)
	if transcript == "" {
		var err error
		transcript, err = s.openai.Transcribe(ctx, t.Audio, t.AudioName, lang)
		if err != nil {
			return nil, apierr.From(err, "OPENAI_STT_ERROR")
		}
	}

	eng, err := s.engines.Hint(t.Engine)
	if err != nil {
		return nil, apierr.BadRequest("BAD_LLM_NAME", err.Error())
	}
	hj, err := eng.HintFromTranscript(ctx, transcript, lang)
	if err != nil {
		return nil, apierr.From(err, "LLM_HINT_ERROR")
	}
	return &Result{Kind: KindAudio, Hint: &HintResult{
		HintID:    s.newID(),
		Question:  transcript,
		Hint:      hj.Hint,
		NextSteps: hj.NextSteps,
	}}, nil
}

// ParseLang reads the "lang" field out of the metadata blob. Absence, a
// parse failure or a blank value silently fall back to the default; a
// bad meta blob never fails the request.
func ParseLang(metaJSON string) string {
	if strings.TrimSpace(metaJSON) == "" {
		return defaultLang
	}
	var m struct {
		Lang string `json:"lang"`
	}
	if err := json.Unmarshal([]byte(metaJSON), &m); err != nil {
		return defaultLang
	}
	if strings.TrimSpace(m.Lang) == "" {
		return defaultLang
	}
	return m.Lang
}

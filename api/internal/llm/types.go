package llm

import "context"

// Task types the vision model is allowed to classify a screenshot into.
const (
	TaskLiveCoding   = "LIVE_CODING"
	TaskCodeReview   = "CODE_REVIEW"
	TaskArchitecture = "ARCHITECTURE"
	TaskDebug        = "DEBUG"
	TaskTheory       = "THEORY"
	TaskUnknown      = "UNKNOWN"
)

// TaskTypes is the closed enum baked into the vision response schema.
var TaskTypes = []string{
	TaskLiveCoding, TaskCodeReview, TaskArchitecture, TaskDebug, TaskTheory, TaskUnknown,
}

// HintJSON is the structured payload the model must return for text and
// audio hints: {"hint":"...","nextSteps":["...","..."]}.
type HintJSON struct {
	Hint      string   `json:"hint"`
	NextSteps []string `json:"nextSteps"`
}

// SnapshotJSON is the structured payload for screenshot analysis,
// constrained server-side through a response_format json_schema.
type SnapshotJSON struct {
	TaskType  string   `json:"taskType"`
	Output    string   `json:"output"`
	Code      string   `json:"code"`
	Checklist []string `json:"checklist"`
	Questions []string `json:"questions"`
	NextSteps []string `json:"nextSteps"`
}

// HintEngine answers a transcript/question with a structured hint. OpenAI
// is the default; Gemini is a selectable alternative for text-only hints.
type HintEngine interface {
	Name() string
	HintFromTranscript(ctx context.Context, transcript, lang string) (HintJSON, error)
}

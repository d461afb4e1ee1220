package hint

// Kind selects exactly one of the three task shapes.
type Kind string

const (
	KindText   Kind = "TEXT"
	KindVision Kind = "VISION"
	KindAudio  Kind = "AUDIO"
)

// Task is the closed union over the three shapes. Exactly the fields of
// the active shape are consulted; the orchestrator switches on Kind
// exhaustively.
type Task struct {
	Kind Kind

	// TEXT and VISION.
	Question string

	// VISION.
	Image     []byte
	ImageMime string

	// AUDIO. A non-blank Transcript skips speech-to-text entirely.
	Audio      []byte
	AudioName  string
	Transcript string

	// Optional metadata JSON blob; only its "lang" field is read.
	Meta string

	// Optional hint engine name ("openai" default, "gemini" alternative).
	Engine string
}

type HintResult struct {
	HintID    string   `json:"hintId"`
	Question  string   `json:"question"`
	Hint      string   `json:"hint"`
	NextSteps []string `json:"nextSteps"`
}

type SnapshotResult struct {
	SnapshotID string   `json:"snapshotId"`
	TaskType   string   `json:"taskType"`
	Output     string   `json:"output"`
	Code       string   `json:"code"`
	Checklist  []string `json:"checklist"`
	Questions  []string `json:"questions"`
	NextSteps  []string `json:"nextSteps"`
}

// Result carries exactly one typed payload, matching the task shape.
type Result struct {
	Kind     Kind
	Hint     *HintResult
	Snapshot *SnapshotResult
}

package openai

import (
	"bytes"
	"encoding/json"

	"hint-gateway/api/internal/apierr"
	"hint-gateway/api/internal/llm"
	"hint-gateway/api/internal/util"
)

func badJSON(op, content string) *apierr.Error {
	return apierr.BadGateway(op+"_BAD_JSON",
		"Model returned JSON without expected fields",
		map[string]any{"content": apierr.Trunc(content, maxContentDiag)})
}

func objectFields(content string) (map[string]json.RawMessage, bool) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

func hasNonNull(m map[string]json.RawMessage, key string) bool {
	v, ok := m[key]
	return ok && string(bytes.TrimSpace(v)) != "null"
}

// decodeHint validates the extracted text against the hint contract: a
// non-null "hint" is required, nextSteps defaults to empty. Unknown extra
// fields are ignored.
func decodeHint(op, content string) (llm.HintJSON, error) {
	content = util.StripCodeFences(content)

	m, ok := objectFields(content)
	if !ok || !hasNonNull(m, "hint") {
		return llm.HintJSON{}, badJSON(op, content)
	}

	var hj llm.HintJSON
	if err := json.Unmarshal([]byte(content), &hj); err != nil {
		return llm.HintJSON{}, badJSON(op, content)
	}
	if hj.NextSteps == nil {
		hj.NextSteps = []string{}
	}
	return hj, nil
}

// decodeSnapshot validates the extracted text against the snapshot
// contract: non-null taskType and output, nextSteps present (possibly
// empty); code, checklist and questions default when absent.
func decodeSnapshot(op, content string) (llm.SnapshotJSON, error) {
	content = util.StripCodeFences(content)

	m, ok := objectFields(content)
	if !ok || !hasNonNull(m, "taskType") || !hasNonNull(m, "output") {
		return llm.SnapshotJSON{}, badJSON(op, content)
	}
	if _, present := m["nextSteps"]; !present {
		return llm.SnapshotJSON{}, badJSON(op, content)
	}

	var sj llm.SnapshotJSON
	if err := json.Unmarshal([]byte(content), &sj); err != nil {
		return llm.SnapshotJSON{}, badJSON(op, content)
	}
	if sj.Checklist == nil {
		sj.Checklist = []string{}
	}
	if sj.Questions == nil {
		sj.Questions = []string{}
	}
	if sj.NextSteps == nil {
		sj.NextSteps = []string{}
	}
	return sj, nil
}

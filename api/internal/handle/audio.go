package handle

import (
	"io"
	"net/http"

	"hint-gateway/api/internal/hint"
)

// HintAudio handles POST /api/v1/hint/audio: multipart form with either an
// audio file or a pre-supplied transcript. A non-blank transcript skips
// speech-to-text entirely.
func (h *Handle) HintAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	if h.replayed(w, r) {
		return
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		http.Error(w, "bad multipart: "+err.Error(), http.StatusBadRequest)
		return
	}

	task := hint.Task{
		Kind:       hint.KindAudio,
		Transcript: r.FormValue("transcript"),
		Meta:       r.FormValue("meta"),
		Engine:     r.FormValue("llm_name"),
	}

	if file, hdr, err := r.FormFile("audio"); err == nil {
		defer file.Close()
		audio, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "read audio: "+err.Error(), http.StatusBadRequest)
			return
		}
		task.Audio = audio
		task.AudioName = hdr.Filename
	}

	res, err := h.svc.Do(r.Context(), r.Header.Get("X-License-Key"), task)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.reply(w, r, http.StatusOK, res.Hint)
}

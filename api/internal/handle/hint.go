package handle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"hint-gateway/api/internal/hint"
	"hint-gateway/api/internal/util"
)

// Hint handles POST /api/v1/hint: multipart form with a required question,
// an optional screenshot and an optional meta JSON blob. With an image the
// request becomes a VISION snapshot, otherwise a TEXT hint.
func (h *Handle) Hint(w http.ResponseWriter, r *http.Request) {
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
		Kind:     hint.KindText,
		Question: r.FormValue("question"),
		Meta:     r.FormValue("meta"),
		Engine:   r.FormValue("llm_name"),
	}

	if file, hdr, err := r.FormFile("image"); err == nil {
		defer file.Close()
		img, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, "read image: "+err.Error(), http.StatusBadRequest)
			return
		}
		task.Kind = hint.KindVision
		task.Image = img
		task.ImageMime = util.PickMime(hdr.Header.Get("Content-Type"), img)
	}

	res, err := h.svc.Do(r.Context(), r.Header.Get("X-License-Key"), task)
	if err != nil {
		writeErr(w, err)
		return
	}

	if res.Kind == hint.KindVision {
		h.reply(w, r, http.StatusOK, res.Snapshot)
		return
	}
	h.reply(w, r, http.StatusOK, res.Hint)
}

// replayed serves a stored response when the idempotency key was already
// seen under the caller's license. The license gate runs before the lookup:
// a stored response is never handed out on a missing or bad key, and one
// license can never replay another's. Returns false when the store is off,
// the header is absent or the key is new.
func (h *Handle) replayed(w http.ResponseWriter, r *http.Request) bool {
	key := r.Header.Get("X-Idempotency-Key")
	if h.idem == nil || key == "" {
		return false
	}
	lic := r.Header.Get("X-License-Key")
	if _, err := h.licenses.Authorize(lic); err != nil {
		writeErr(w, err)
		return true
	}
	status, body, err := h.idem.Find(r.Context(), key, lic)
	if err != nil {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
	return true
}

// reply writes the success payload and records it for replay when an
// idempotency key was presented.
func (h *Handle) reply(w http.ResponseWriter, r *http.Request, status int, v any) {
	if key := r.Header.Get("X-Idempotency-Key"); h.idem != nil && key != "" {
		if body, err := json.Marshal(v); err == nil {
			// The request context may be gone by the time the client
			// disconnects; saving uses its own short-lived context.
			_ = h.idem.Save(context.WithoutCancel(r.Context()), key,
				r.Header.Get("X-License-Key"), status, body)
		}
	}
	writeJSON(w, status, v)
}

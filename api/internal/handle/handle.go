// Package handle wires the gateway's HTTP surface: multipart hint
// endpoints, the license status probe, and the JSON error envelope shared
// by all of them.
package handle

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"hint-gateway/api/internal/apierr"
	"hint-gateway/api/internal/hint"
	"hint-gateway/api/internal/license"
)

// multipart bodies carry up to a 3MB image or an audio clip
const maxFormMemory = 16 << 20

// ReplayStore persists responses keyed by idempotency key and the license
// that produced them. A key stored under one license is invisible to every
// other license.
type ReplayStore interface {
	Find(ctx context.Context, idemKey, licenseKey string) (int, []byte, error)
	Save(ctx context.Context, idemKey, licenseKey string, status int, body []byte) error
}

type Handle struct {
	svc      *hint.Service
	licenses *license.Table
	idem     ReplayStore
}

// New builds the handler set. idem may be nil, which disables replay.
func New(svc *hint.Service, lic *license.Table, idem ReplayStore) *Handle {
	return &Handle{svc: svc, licenses: lic, idem: idem}
}

type errorBody struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"requestId"`
	Details   map[string]any `json:"details"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	ae := apierr.From(err, "INTERNAL")
	writeJSON(w, ae.Status, errorResponse{Error: errorBody{
		Code:      ae.Code,
		Message:   ae.Message,
		RequestID: uuid.NewString(),
		Details:   ae.Details,
	}})
}

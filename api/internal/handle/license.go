package handle

import "net/http"

type licenseLimits struct {
	MaxHintsPerDay         int `json:"maxHintsPerDay"`
	MaxSnapshotsPerDay     int `json:"maxSnapshotsPerDay"`
	MaxAudioSecondsPerHint int `json:"maxAudioSecondsPerHint"`
}

type licenseUsage struct {
	Hints     int   `json:"hints"`
	Snapshots int   `json:"snapshots"`
	LLMTokens int64 `json:"llmTokens"`
}

type licenseStatusResponse struct {
	Status     string        `json:"status"`
	Plan       string        `json:"plan"`
	Limits     licenseLimits `json:"limits"`
	UsageToday licenseUsage  `json:"usageToday"`
}

var planLimits = map[string]licenseLimits{
	"free": {MaxHintsPerDay: 10, MaxSnapshotsPerDay: 5, MaxAudioSecondsPerHint: 60},
	"pro":  {MaxHintsPerDay: 200, MaxSnapshotsPerDay: 100, MaxAudioSecondsPerHint: 300},
}

// LicenseStatus handles GET /api/v1/license/status. Usage counters are
// reported as zero: the gateway does not account usage, the fields exist
// for the client contract.
func (h *Handle) LicenseStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}

	entry, err := h.licenses.Authorize(r.Header.Get("X-License-Key"))
	if err != nil {
		writeErr(w, err)
		return
	}

	limits, ok := planLimits[entry.Plan]
	if !ok {
		limits = planLimits["free"]
	}
	writeJSON(w, http.StatusOK, licenseStatusResponse{
		Status:     "ACTIVE",
		Plan:       entry.Plan,
		Limits:     limits,
		UsageToday: licenseUsage{},
	})
}

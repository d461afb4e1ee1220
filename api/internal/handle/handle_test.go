package handle

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hint-gateway/api/internal/hint"
	"hint-gateway/api/internal/license"
	"hint-gateway/api/internal/llm"
	"hint-gateway/api/internal/llm/openai"
)

func fakeChatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env := map[string]any{"choices": []any{map[string]any{
			"finish_reason": "stop",
			"message":       map[string]any{"content": content},
		}}}
		_ = json.NewEncoder(w).Encode(env)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestHandle(t *testing.T, chatContent string) *Handle {
	t.Helper()
	srv := fakeChatServer(t, chatContent)
	oa := openai.New(srv.URL, "test-key", "gpt-test", "whisper-test", 5*time.Second)
	licenses := license.NewTable([]license.Entry{{Key: "good-key", Enabled: true, Plan: "pro"}})
	svc := hint.NewService(licenses, oa, llm.NewEngines(oa))
	return New(svc, licenses, nil)
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHintTextEndpoint(t *testing.T) {
	h := newTestHandle(t, `{"hint":"use a heap","nextSteps":["a","b"]}`)

	body, ct := multipartBody(t, map[string]string{"question": "top-k"}, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hint", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-License-Key", "good-key")
	rec := httptest.NewRecorder()

	h.Hint(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res hint.HintResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.HintID)
	assert.Equal(t, "top-k", res.Question)
	assert.Equal(t, "use a heap", res.Hint)
	assert.Equal(t, []string{"a", "b"}, res.NextSteps)
}

func TestHintVisionEndpoint(t *testing.T) {
	h := newTestHandle(t, `{"taskType":"DEBUG","output":"off-by-one","code":"","checklist":[],"questions":[],"nextSteps":[]}`)

	body, ct := multipartBody(t, map[string]string{"question": "what is wrong?"}, "image", "shot.png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hint", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-License-Key", "good-key")
	rec := httptest.NewRecorder()

	h.Hint(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res hint.SnapshotResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "DEBUG", res.TaskType)
	assert.NotEmpty(t, res.SnapshotID)
}

func TestHintErrorEnvelope(t *testing.T) {
	h := newTestHandle(t, `{"hint":"x"}`)

	body, ct := multipartBody(t, map[string]string{"question": "q"}, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hint", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-License-Key", "wrong")
	rec := httptest.NewRecorder()

	h.Hint(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	var res errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "LICENSE_INVALID", res.Error.Code)
	assert.NotEmpty(t, res.Error.RequestID)
	assert.NotEmpty(t, res.Error.Message)
}

func TestHintMethodNotAllowed(t *testing.T) {
	h := newTestHandle(t, `{"hint":"x"}`)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/hint", nil)
	rec := httptest.NewRecorder()

	h.Hint(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHintAudioTranscriptField(t *testing.T) {
	h := newTestHandle(t, `{"hint":"pivot and partition","nextSteps":[]}`)

	body, ct := multipartBody(t, map[string]string{"transcript": "explain quicksort"}, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hint/audio", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-License-Key", "good-key")
	rec := httptest.NewRecorder()

	h.HintAudio(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res hint.HintResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "explain quicksort", res.Question)
	assert.Equal(t, "pivot and partition", res.Hint)
}

func TestLicenseStatusEndpoint(t *testing.T) {
	h := newTestHandle(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/license/status", nil)
	req.Header.Set("X-License-Key", "good-key")
	rec := httptest.NewRecorder()

	h.LicenseStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res licenseStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "ACTIVE", res.Status)
	assert.Equal(t, "pro", res.Plan)
	assert.Equal(t, 200, res.Limits.MaxHintsPerDay)
	assert.Zero(t, res.UsageToday.Hints)
}

// fakeReplayStore holds at most one stored response, keyed like the real
// repo by idempotency key plus license key.
type fakeReplayStore struct {
	storedKey  string
	storedLic  string
	storedBody []byte
	finds      int
	lastFind   string
	saves      int
}

func (f *fakeReplayStore) Find(_ context.Context, idemKey, licenseKey string) (int, []byte, error) {
	f.finds++
	f.lastFind = licenseKey
	if f.storedBody == nil || idemKey != f.storedKey || licenseKey != f.storedLic {
		return 0, nil, sql.ErrNoRows
	}
	return http.StatusOK, f.storedBody, nil
}

func (f *fakeReplayStore) Save(_ context.Context, idemKey, licenseKey string, status int, body []byte) error {
	f.saves++
	return nil
}

func newTestHandleWithReplay(t *testing.T, chatContent string, idem ReplayStore) *Handle {
	t.Helper()
	srv := fakeChatServer(t, chatContent)
	oa := openai.New(srv.URL, "test-key", "gpt-test", "whisper-test", 5*time.Second)
	licenses := license.NewTable([]license.Entry{{Key: "good-key", Enabled: true, Plan: "pro"}})
	svc := hint.NewService(licenses, oa, llm.NewEngines(oa))
	return New(svc, licenses, idem)
}

func TestHintReplayServesStoredResponse(t *testing.T) {
	stored := []byte(`{"hintId":"prev","question":"top-k","hint":"stored answer","nextSteps":[]}`)
	idem := &fakeReplayStore{storedKey: "idem-1", storedLic: "good-key", storedBody: stored}
	h := newTestHandleWithReplay(t, `{"hint":"fresh answer"}`, idem)

	body, ct := multipartBody(t, map[string]string{"question": "top-k"}, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hint", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-License-Key", "good-key")
	req.Header.Set("X-Idempotency-Key", "idem-1")
	rec := httptest.NewRecorder()

	h.Hint(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(stored), rec.Body.String())
	assert.Zero(t, idem.saves)
}

// A stored response is never handed out without a valid license: the gate
// runs before the replay lookup.
func TestHintReplayRequiresLicense(t *testing.T) {
	stored := []byte(`{"hintId":"prev","question":"q","hint":"stored","nextSteps":[]}`)
	idem := &fakeReplayStore{storedKey: "idem-1", storedLic: "good-key", storedBody: stored}
	h := newTestHandleWithReplay(t, `{"hint":"fresh"}`, idem)

	body, ct := multipartBody(t, map[string]string{"question": "q"}, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hint", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-Idempotency-Key", "idem-1")
	rec := httptest.NewRecorder()

	h.Hint(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	var res errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "LICENSE_MISSING", res.Error.Code)
	assert.Zero(t, idem.finds)
}

// A key stored under one license never replays for another: the lookup is
// scoped, so the second caller gets a fresh response instead.
func TestHintReplayScopedToLicense(t *testing.T) {
	stored := []byte(`{"hintId":"prev","question":"q","hint":"someone else's answer","nextSteps":[]}`)
	idem := &fakeReplayStore{storedKey: "idem-1", storedLic: "other-tenant", storedBody: stored}
	h := newTestHandleWithReplay(t, `{"hint":"fresh answer","nextSteps":[]}`, idem)

	body, ct := multipartBody(t, map[string]string{"question": "q"}, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/hint", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-License-Key", "good-key")
	req.Header.Set("X-Idempotency-Key", "idem-1")
	rec := httptest.NewRecorder()

	h.Hint(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res hint.HintResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "fresh answer", res.Hint)
	assert.Equal(t, 1, idem.finds)
	assert.Equal(t, "good-key", idem.lastFind)
	assert.Equal(t, 1, idem.saves)
}

// An image part without a Content-Type header gets its mime sniffed from
// the magic bytes before the data URL is built.
func TestHintVisionSniffsMimeWhenPartOmitsType(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		env := map[string]any{"choices": []any{map[string]any{
			"finish_reason": "stop",
			"message":       map[string]any{"content": `{"taskType":"DEBUG","output":"ok","code":"","checklist":[],"questions":[],"nextSteps":[]}`},
		}}}
		_ = json.NewEncoder(w).Encode(env)
	}))
	t.Cleanup(srv.Close)
	oa := openai.New(srv.URL, "test-key", "gpt-test", "whisper-test", 5*time.Second)
	licenses := license.NewTable([]license.Entry{{Key: "good-key", Enabled: true}})
	h := New(hint.NewService(licenses, oa, llm.NewEngines(oa)), licenses, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("question", "what is wrong?"))
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="image"; filename="shot.bin"`},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/hint", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-License-Key", "good-key")
	rec := httptest.NewRecorder()

	h.Hint(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	msgs := gotReq["messages"].([]any)
	userContent := msgs[1].(map[string]any)["content"].([]any)
	imgPart := userContent[1].(map[string]any)["image_url"].(map[string]any)
	assert.True(t, strings.HasPrefix(imgPart["url"].(string), "data:image/png;base64,"))
}

func TestLicenseStatusForbidden(t *testing.T) {
	h := newTestHandle(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/license/status", nil)
	rec := httptest.NewRecorder()

	h.LicenseStatus(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "LICENSE_MISSING")
}

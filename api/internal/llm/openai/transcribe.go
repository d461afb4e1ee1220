package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"strings"

	"hint-gateway/api/internal/apierr"
)

const opSTT = "OPENAI_STT"

// Transcribe runs speech-to-text over the audio bytes via the multipart
// /audio/transcriptions endpoint. The filename falls back to audio.wav
// when the caller supplied none.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename, lang string) (string, error) {
	if err := c.ensureKey(); err != nil {
		return "", err
	}
	if strings.TrimSpace(filename) == "" {
		filename = "audio.wav"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("model", c.sttModel); err != nil {
		return "", apierr.BadGateway(opSTT+"_ERROR", "STT call failed", map[string]any{"err": err.Error()})
	}
	if strings.TrimSpace(lang) != "" {
		_ = mw.WriteField("language", lang)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", apierr.BadGateway(opSTT+"_ERROR", "STT call failed", map[string]any{"err": err.Error()})
	}
	if _, err := fw.Write(audio); err != nil {
		return "", apierr.BadGateway(opSTT+"_ERROR", "STT call failed", map[string]any{"err": err.Error()})
	}
	_ = mw.Close()

	raw, err := c.post(ctx, opSTT, "/audio/transcriptions", mw.FormDataContentType(), buf.Bytes())
	if err != nil {
		return "", err
	}

	var tr struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(raw), &tr); err != nil {
		return "", apierr.BadGateway(opSTT+"_ERROR", "STT call failed",
			map[string]any{"raw": apierr.Trunc(raw, maxBodyDiag)})
	}
	if strings.TrimSpace(tr.Text) == "" {
		return "", apierr.BadGateway(opSTT+"_EMPTY", "Empty STT response", nil)
	}
	return tr.Text, nil
}

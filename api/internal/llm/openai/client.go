// Package openai talks to an OpenAI-compatible provider: chat completions
// for text hints, vision chat completions with structured outputs for
// screenshot analysis, and audio transcriptions for speech-to-text. Every
// failure is surfaced as an apierr code; nothing is retried.
package openai

import (
	"net"
	"net/http"
	"strings"
	"time"

	"hint-gateway/api/internal/apierr"
)

// Diagnostic payload caps for the details map.
const (
	maxBodyDiag    = 2000
	maxContentDiag = 1200
)

type Client struct {
	baseURL   string
	apiKey    string
	chatModel string
	sttModel  string
	httpc     *http.Client
}

func New(baseURL, apiKey, chatModel, sttModel string, timeout time.Duration) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		// First headers can take a while on reasoning models.
		ResponseHeaderTimeout: 120 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		chatModel: chatModel,
		sttModel:  sttModel,
		httpc: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
	}
}

// WithHTTPClient overrides the internal HTTP client (e.g., for tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpc = hc
	}
	return c
}

func (c *Client) Name() string { return "openai" }

func (c *Client) ensureKey() error {
	if strings.TrimSpace(c.apiKey) == "" {
		return apierr.Internal("OPENAI_KEY_MISSING", "OPENAI_API_KEY is not set on server")
	}
	return nil
}

package openai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"hint-gateway/api/internal/apierr"
)

// post performs a single blocking call against the provider and maps every
// transport-level failure into the op-prefixed taxonomy: connection and
// timeout errors to <op>_NETWORK, non-2xx statuses to <op>_HTTP with the
// truncated body, a blank body to <op>_RAW_EMPTY. One attempt, no backoff.
func (c *Client) post(ctx context.Context, op, path, contentType string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", apierr.BadGateway(op+"_NETWORK", "Bad request build: "+err.Error(), nil)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", apierr.BadGateway(op+"_NETWORK", "Network/timeout: "+err.Error(), nil)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apierr.BadGateway(op+"_NETWORK", "Network/timeout: "+err.Error(), nil)
	}
	if resp.StatusCode/100 != 2 {
		return "", apierr.BadGateway(op+"_HTTP",
			fmt.Sprintf("HTTP %d from OpenAI", resp.StatusCode),
			map[string]any{
				"status": resp.StatusCode,
				"body":   apierr.Trunc(string(raw), maxBodyDiag),
			})
	}
	if strings.TrimSpace(string(raw)) == "" {
		return "", apierr.BadGateway(op+"_RAW_EMPTY", "Empty raw response from OpenAI", nil)
	}
	return string(raw), nil
}

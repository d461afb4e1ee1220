package util

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// SniffImageMime detects the image MIME by magic bytes, falling back to
// net/http content sniffing for anything else.
func SniffImageMime(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return "image/png"
	}
	if len(b) > 0 {
		return http.DetectContentType(b)
	}
	return "application/octet-stream"
}

// DataURL embeds raw bytes as a base64 data URL for multimodal chat parts.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// PickMime takes the explicit content type when given, otherwise sniffs,
// otherwise defaults to image/png.
func PickMime(explicit string, data []byte) string {
	if m := strings.TrimSpace(explicit); m != "" {
		return m
	}
	if len(data) > 0 {
		return SniffImageMime(data)
	}
	return "image/png"
}

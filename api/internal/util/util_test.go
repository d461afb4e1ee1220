package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences(`{"a":1}`))
}

func TestSniffImageMime(t *testing.T) {
	assert.Equal(t, "image/jpeg", SniffImageMime([]byte{0xFF, 0xD8, 0xFF}))
	assert.Equal(t, "image/png", SniffImageMime([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}))
}

func TestDataURL(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,aGk=", DataURL("image/png", []byte("hi")))
}

func TestPickMime(t *testing.T) {
	assert.Equal(t, "image/webp", PickMime("image/webp", nil))
	assert.Equal(t, "image/jpeg", PickMime("", []byte{0xFF, 0xD8, 0xFF}))
	assert.Equal(t, "image/png", PickMime("", nil))
}

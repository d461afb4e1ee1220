package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

// Error is the single failure shape surfaced by the gateway: an HTTP status
// class, a stable machine code, a human message and an optional details map
// with truncated diagnostic payloads. Internal errors never leak through it.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(status int, code, message string, details map[string]any) *Error {
	if details == nil {
		details = map[string]any{}
	}
	return &Error{Status: status, Code: code, Message: message, Details: details}
}

func BadRequest(code, message string) *Error {
	return New(http.StatusBadRequest, code, message, nil)
}

func Forbidden(code, message string, details map[string]any) *Error {
	return New(http.StatusForbidden, code, message, details)
}

func BadGateway(code, message string, details map[string]any) *Error {
	return New(http.StatusBadGateway, code, message, details)
}

func Internal(code, message string) *Error {
	return New(http.StatusInternalServerError, code, message, nil)
}

// From returns err as *Error, wrapping anything unexpected into a generic
// 502 so no raw error text reaches the caller outside the details map.
func From(err error, fallbackCode string) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return BadGateway(fallbackCode, "provider call failed", map[string]any{"err": err.Error()})
}

// Trunc caps diagnostic payloads before they are stored in Details. The
// cut never lands mid-rune; model output is mostly multi-byte Cyrillic.
func Trunc(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "...(truncated)"
}

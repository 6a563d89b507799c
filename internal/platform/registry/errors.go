package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an API failure. Every operation on the client returns
// either a success value or a *Error carrying exactly one of these kinds;
// callers never have to parse message strings.
type Kind string

const (
	KindUnauthorized Kind = "unauthorized"
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindNetwork      Kind = "network"
	KindUnknown      Kind = "unknown"
)

// Error is the uniform failure type for all registry operations.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	cause      error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("registry: %s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("registry: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func IsUnauthorized(err error) bool { return hasKind(err, KindUnauthorized) }
func IsValidation(err error) bool   { return hasKind(err, KindValidation) }
func IsNotFound(err error) bool     { return hasKind(err, KindNotFound) }
func IsNetwork(err error) bool      { return hasKind(err, KindNetwork) }

func hasKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func errUnauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func errNetwork(err error) *Error {
	return &Error{Kind: KindNetwork, Message: err.Error(), cause: err}
}

// errFromResponse maps an HTTP failure status to a typed error. Backend
// validation messages are surfaced verbatim; the client does not
// re-interpret them.
func errFromResponse(status int, body []byte) *Error {
	e := &Error{StatusCode: status, Message: extractMessage(body)}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindUnauthorized
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e.Kind = KindValidation
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	default:
		e.Kind = KindUnknown
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// extractMessage pulls a human-readable message from a backend error body.
// Bodies are commonly {"message": "..."} or {"error": "..."}; anything else
// is passed through as-is.
func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return trimmed
}

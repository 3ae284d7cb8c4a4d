package model

import "errors"

var (
	// ErrNotFound marks a missing file or directory surfaced inside a tool
	// result rather than as a transport failure.
	ErrNotFound = errors.New("not found")
	// ErrModelUnavailable marks a language-model backend failure. It aborts
	// the current round only; the session remains usable.
	ErrModelUnavailable = errors.New("model unavailable")
)

// ProviderError describes a failure from an external capability (OCR binary,
// vision endpoint, chat backend).
type ProviderError struct {
	Code      string
	Message   string
	Retryable bool
	Cause     error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

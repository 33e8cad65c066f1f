package domain

import (
	"errors"
	"fmt"
)

var ErrSessionNotFound = errors.New("session not found")

// ValidationError reports malformed or missing input detected before any
// backend call. Key names the translation-table entry for the message.
type ValidationError struct {
	Field   string
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// BackendError wraps any failure returned by the advisory backend.
type BackendError struct {
	Capability string
	Err        error
}

func (e *BackendError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failed", e.Capability)
	}
	return e.Err.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

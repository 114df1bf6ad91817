package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both a missing record and a record owned by someone
	// else; responses deliberately do not distinguish the two.
	ErrNotFound = errors.New("not found")

	// ErrDocumentNotReady indicates a chat action was attempted before the
	// bound document finished processing.
	ErrDocumentNotReady = errors.New("document has not been processed yet")

	// ErrAIUnavailable indicates a credentialed AI call failed. It never
	// crosses the HTTP boundary; callers convert it to placeholder content.
	ErrAIUnavailable = errors.New("ai unavailable")
)

// ValidationError is a rejected input: disallowed media type, oversize file,
// missing required field. Surfaced to the client as a 400 with its message.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

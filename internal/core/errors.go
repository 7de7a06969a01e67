package core

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the service and the store. Their messages are
// matched by MapError, so keep them in sync with error_messages.go.
var (
	ErrDeckNotFound    = errors.New("deck not found")
	ErrCardNotFound    = errors.New("card not found")
	ErrCodeNotFound    = errors.New("sign-in code not found")
	ErrSessionNotFound = errors.New("session not found")

	ErrEmptyFile       = errors.New("empty file")
	ErrNoCards         = errors.New("no importable cards")
	ErrTooManyCards    = errors.New("too many cards in one import")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedText = errors.New("unsupported characters in card text")
	ErrInvalidCode     = errors.New("invalid sign-in code")
	ErrCodeExpired     = errors.New("sign-in code expired")
	ErrTooManyGuesses  = errors.New("too many sign-in attempts")
	ErrUnauthorized    = errors.New("unauthorized")
)

// ValidationError reports a rejected field value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDeckNotFound) || errors.Is(err, ErrCardNotFound)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

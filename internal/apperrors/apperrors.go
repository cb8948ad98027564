package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport-level mapping
type Kind int

const (
	// Persistence covers store I/O failures and anything unclassified
	Persistence Kind = iota
	// NotFound means the addressed user/message/picture does not exist
	NotFound
	// Validation covers malformed or out-of-range input
	Validation
	// Conflict means the mutation would duplicate existing state
	Conflict
	// Unauthorized means a failed or absent credential
	Unauthorized
)

// Error is an error carrying a Kind
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new classified error
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies an underlying error
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of err, walking the wrap chain.
// Unclassified errors count as Persistence.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Persistence
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

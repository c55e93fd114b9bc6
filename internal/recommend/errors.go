package recommend

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure for the HTTP boundary.
type Kind int

const (
	// KindInternal is any unexpected failure.
	KindInternal Kind = iota
	// KindInput means source or destination was missing.
	KindInput
	// KindLocationNotFound means a place name did not geocode.
	KindLocationNotFound
	// KindProviderUnavailable means a geocoding, routing or air-quality call failed.
	KindProviderUnavailable
	// KindConfiguration means the service is missing a credential.
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindLocationNotFound:
		return "location_not_found"
	case KindProviderUnavailable:
		return "provider_unavailable"
	case KindConfiguration:
		return "configuration"
	default:
		return "internal"
	}
}

// ErrMissingInput is returned when source or destination is blank.
var ErrMissingInput = errors.New("source and destination are required")

// Error is a classified pipeline failure. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Server Error"
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

package stylize

import (
	"errors"
	"fmt"
)

// Kind classifies a failed request for the transport layer.
type Kind int

const (
	// KindInput means the caller sent something unusable.
	KindInput Kind = iota + 1
	// KindAuth covers authentication failures.
	KindAuth
	// KindBackend means a model, filter or store failed.
	KindBackend
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindAuth:
		return "auth"
	case KindBackend:
		return "backend"
	default:
		return "unknown"
	}
}

// Request errors
var (
	ErrMissingImage = errors.New("stylize: no image uploaded")
	ErrShuttingDown = errors.New("stylize: server is shutting down")
)

// Error carries a Kind alongside the underlying cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindBackend if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindBackend
}

func inputError(err error) error   { return &Error{Kind: KindInput, Err: err} }
func backendError(err error) error { return &Error{Kind: KindBackend, Err: err} }

// Package service holds the business rules of the development backend:
// registration and OTP login, the feed and posts, profiles with reviewed
// sections, and presigned media uploads. Persistence is delegated to the
// repository interfaces each service declares.
package service

import (
	"errors"

	"github.com/atinyakov/DigitalHouse/internal/repository"
)

// Kind classifies a service failure for the transport layer.
type Kind int

const (
	// KindInternal is an unexpected failure; its message is not shown.
	KindInternal Kind = iota
	KindInvalid
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindTooLarge
)

// Error is a failure whose Message may be shown to the user.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func fail(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// KindOf returns the kind of err, KindInternal when it is not an *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message of err, or "".
func MessageOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}

// notFound maps repository.ErrNotFound to a KindNotFound error with msg and
// passes every other error through.
func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &Error{Kind: KindNotFound, Message: msg, Err: err}
	}
	return err
}

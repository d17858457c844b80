// Package errs defines the closed set of failure kinds a handler can end with
// and how each one maps to an HTTP status.
package errs

import (
	"errors"
	"net/http"
)

type Kind int

const (
	// CollaboratorFailure is the zero value so unclassified errors land on a 500.
	CollaboratorFailure Kind = iota
	ConfigurationMissing
	InvalidInput
	NotFound
)

func (k Kind) String() string {
	switch k {
	case ConfigurationMissing:
		return "configuration_missing"
	case InvalidInput:
		return "invalid_input"
	case NotFound:
		return "not_found"
	default:
		return "collaborator_failure"
	}
}

// Status returns the HTTP status for the kind. NotFound answers 400, not 404;
// existing clients depend on it.
func (k Kind) Status() int {
	switch k {
	case InvalidInput, NotFound:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewConfigurationMissing(message string) *Error {
	return &Error{Kind: ConfigurationMissing, Message: message}
}

func NewInvalidInput(message string) *Error {
	return &Error{Kind: InvalidInput, Message: message}
}

func NewNotFound(message string) *Error {
	return &Error{Kind: NotFound, Message: message}
}

// KindOf classifies err. Anything that is not an *Error is a collaborator failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return CollaboratorFailure
}

// MessageOf returns the client-facing message carried by err, or "" for
// errors that are not an *Error.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

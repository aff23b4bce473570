package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable machine-readable classification of an error. It is what
// the request layer keys on to pick a status code; messages are for humans.
type Kind string

const (
	NotFound              Kind = "not_found"
	Forbidden             Kind = "forbidden"
	Unauthorized          Kind = "unauthorized"
	Conflict              Kind = "conflict"
	AlreadyExists         Kind = "already_exists"
	NoCapacity            Kind = "no_capacity"
	InsufficientAvailable Kind = "insufficient_available"
	InvalidTransition     Kind = "invalid_transition"
	Validation            Kind = "validation"
	Internal              Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf unwraps err and returns its Kind, or Internal for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Status maps an error kind to the HTTP status the API answers with.
func Status(err error) int {
	switch KindOf(err) {
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case Unauthorized:
		return http.StatusUnauthorized
	case AlreadyExists:
		return http.StatusConflict
	case Conflict, NoCapacity, InsufficientAvailable, InvalidTransition, Validation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

package apperrors

import (
	"fmt"
	"net/http"
)

// Kind classifies an error so the HTTP layer can translate it into a
// status code and error_type label without inspecting the cause.
type Kind int

const (
	KindValidation Kind = iota
	KindConflict
	KindStorage
	KindDispatch
	KindProvider
	KindConfiguration
)

// HTTPStatus returns the status code mirrored into the response envelope.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Label returns the error_type string used in the response envelope.
func (k Kind) Label() string {
	switch k {
	case KindValidation:
		return "Bad Request"
	case KindConflict:
		return "Conflict"
	default:
		return "Internal Server Error"
	}
}

// Error carries an error kind, a client-facing message and optional args
// echoed back in the response body.
type Error struct {
	Kind    Kind
	Message string
	Args    []interface{}
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

// New creates an error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause. The cause's
// message is exposed through Args so clients keep the debugging detail the
// original service returned.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	e := &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
	if err != nil {
		e.Args = []interface{}{err.Error()}
	}
	return e
}

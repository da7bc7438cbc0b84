// Package apperr defines the error taxonomy shared by the job board layers.
//
// Every failure that crosses a package boundary is an *Error carrying a Kind.
// Transport code maps kinds to status codes with HTTPStatus and never
// inspects messages.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/go-errors/errors"
)

// Kind classifies an error for callers.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindNotFound   Kind = "NOT_FOUND"
	KindStorage    Kind = "STORAGE"
	KindInternal   Kind = "INTERNAL"
)

// Error is a classified failure with the operation that produced it.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
	Stack   []byte
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error { return e.Err }

// StackTrace returns the stack captured when the error was built.
func (e *Error) StackTrace() []byte { return e.Stack }

// New builds an *Error, capturing a stack from err when it already has one.
func New(kind Kind, op, message string, err error) *Error {
	var stack []byte
	var ge *goerrors.Error
	switch {
	case errors.As(err, &ge):
		stack = ge.Stack()
	case err != nil:
		stack = goerrors.Wrap(err, 2).Stack()
	default:
		stack = goerrors.New(message).Stack()
	}
	return &Error{Kind: kind, Op: op, Message: message, Err: err, Stack: stack}
}

// Validation reports a missing or invalid input field.
func Validation(op, message string) *Error { return New(KindValidation, op, message, nil) }

// NotFound reports an unknown id.
func NotFound(op, message string) *Error { return New(KindNotFound, op, message, nil) }

// Storage reports a persistence failure.
func Storage(op string, err error) *Error { return New(KindStorage, op, "storage failure", err) }

// Internal reports anything unexpected.
func Internal(op string, err error) *Error { return New(KindInternal, op, "internal error", err) }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the user-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return err != nil && KindOf(err) == KindNotFound }

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

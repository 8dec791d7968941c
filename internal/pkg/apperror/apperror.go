// FILE: internal/pkg/apperror/apperror.go
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the HTTP boundary and for logging.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthorization  Kind = "authorization"
	KindAlreadyHandled Kind = "already_handled"
	KindNotFound       Kind = "not_found"
	KindPersistence    Kind = "persistence"
	KindConfiguration  Kind = "configuration"
	KindToken          Kind = "token"
	KindInvalidRole    Kind = "invalid_role"
)

// Sentinels for errors.Is comparisons. Two *Error values match when their kinds match.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrAuthorization  = &Error{Kind: KindAuthorization}
	ErrAlreadyHandled = &Error{Kind: KindAlreadyHandled}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrPersistence    = &Error{Kind: KindPersistence}
	ErrConfiguration  = &Error{Kind: KindConfiguration}
	ErrToken          = &Error{Kind: KindToken}
	ErrInvalidRole    = &Error{Kind: KindInvalidRole}
)

// Error is the single error type crossing service boundaries.
// Message is safe to show to clients, Err never is.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// ValidationFields builds a validation error carrying per-field messages.
func ValidationFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func AlreadyHandled(message string) *Error {
	return &Error{Kind: KindAlreadyHandled, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Persistence wraps a store failure. The cause is kept for server-side logs only.
func Persistence(err error) *Error {
	return &Error{Kind: KindPersistence, Message: "internal server error", Err: err}
}

func Configuration(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

func Token(message string, err error) *Error {
	return &Error{Kind: KindToken, Message: message, Err: err}
}

func InvalidRole(role string) *Error {
	return &Error{Kind: KindInvalidRole, Message: fmt.Sprintf("invalid role %q", role)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

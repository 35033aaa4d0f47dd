package gateway

import "errors"

// Error kinds. Callers dispatch with errors.Is; the Error value carries the
// user-visible message, verbatim from the API where one was provided.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidationFailed   = errors.New("registration rejected")
	ErrAuthUnavailable    = errors.New("authentication service unavailable")
	ErrSessionExpired     = errors.New("session expired")
)

type Error struct {
	kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.kind }

func newError(kind error, message string) *Error {
	if message == "" {
		message = kind.Error()
	}
	return &Error{kind: kind, Message: message}
}

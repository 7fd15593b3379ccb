package app

import "errors"

var (
	// ErrAuthRequired means the caller has no recognized identity.
	ErrAuthRequired = errors.New("authentication required")
	// ErrNotAuthorized means the caller is known but not on the admin allow-list.
	ErrNotAuthorized = errors.New("access denied")
	// ErrNotFound means the addressed record does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError marks malformed input; handlers map it to a client error
// rather than a server failure.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}

// Package autherr defines the error type shared by the token service and
// the seeder: an HTTP-ish status code plus one or more human-readable
// messages, enough for the boundary layer to translate into a wire
// response without the core doing any wire formatting.
package autherr

import (
	"net/http"
	"strings"
)

// Error carries a status code and the messages shown to the caller.
type Error struct {
	Status   int
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Unauthorized builds a 401 error with the given messages.
func Unauthorized(messages ...string) *Error {
	return &Error{Status: http.StatusUnauthorized, Messages: messages}
}

// Forbidden builds a 403 error with the given messages.
func Forbidden(messages ...string) *Error {
	return &Error{Status: http.StatusForbidden, Messages: messages}
}

// Internal builds a 500 error with the given messages.
func Internal(messages ...string) *Error {
	return &Error{Status: http.StatusInternalServerError, Messages: messages}
}

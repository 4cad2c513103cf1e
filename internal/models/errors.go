package models

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrForbidden     = errors.New("forbidden")
)

// Error is an error with an HTTP status and a message that is safe to show
// to the caller. Backend failures are surfaced with the backend status.
type Error struct {
	Status  int
	Message string
	Err     error
}

func NewError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error {
	return NewError(http.StatusBadRequest, message)
}

// WrapError keeps the underlying cause for logging while exposing message.
func WrapError(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

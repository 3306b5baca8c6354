package service

import (
	"errors"
	"net/http"
)

const (
	CodeWrongPassword      = "auth/wrong-password"
	CodeUserNotFound       = "auth/user-not-found"
	CodeEmailAlreadyInUse  = "auth/email-already-in-use"
	CodeWeakPassword       = "auth/weak-password"
	CodeInvalidEmail       = "auth/invalid-email"
	CodeFederatedFailed    = "auth/federated-failed"
	CodeFederatedNotConfig = "auth/operation-not-allowed"
)

// Error is a credential or validation failure reported by the auth service.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeEmailAlreadyInUse:
		return http.StatusConflict
	case CodeWrongPassword, CodeUserNotFound, CodeFederatedFailed:
		return http.StatusUnauthorized
	case CodeFederatedNotConfig:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func newError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// ErrorCode returns the auth code carried by err, or "" if err is not an auth error.
func ErrorCode(err error) string {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Code
	}
	return ""
}

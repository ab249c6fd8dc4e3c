package apperr

import (
	"errors"
	"net/http"
)

// Error is the application error carried from services up to the HTTP layer.
// Status and Code map one-to-one onto the API's error responses; Err keeps the
// underlying cause for logs without leaking it to clients.
type Error struct {
	Status  int
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: message}
}

func Validation(message string, fields ...FieldError) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: message, Fields: fields}
}

// Business marks an illegal state transition or other business-rule breach.
// code defaults to BUSINESS_RULE_VALIDATION when empty.
func Business(message, code string) *Error {
	if code == "" {
		code = "BUSINESS_RULE_VALIDATION"
	}
	return &Error{Status: http.StatusUnprocessableEntity, Code: code, Message: message}
}

func Authentication(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

func Authorization(message string) *Error {
	return &Error{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Code: "CONFLICT_ERROR", Message: message}
}

func Upload(message string, cause error) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "UPLOAD_ERROR", Message: message, Err: cause}
}

func Database(cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: "DATABASE_ERROR", Message: "Database error", Err: cause}
}

// From passes known application errors through unchanged and wraps anything
// else as a Database error so internals never reach the client.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Database(err)
}

func Is(err error, code string) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

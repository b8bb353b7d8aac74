package sandbox

import (
	"fmt"
	"net/http"
)

// AppError is a domain error carrying the HTTP status it maps to.
type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
	Details string `json:"details"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("AppError: %s (Code: %d, Details: %s)", e.Message, e.Code, e.Details)
}

func (e *AppError) Unwrap() error { return e.Err }

func badRequest(message, details string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Details: details}
}

func notFound(message, details string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Details: details}
}

func forbidden(message, details string) *AppError {
	return &AppError{Code: http.StatusForbidden, Message: message, Details: details}
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the error type handlers return to clients. An
// AppError carries the HTTP status and a client-safe message; the
// underlying cause is kept for server-side logging only.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidation       = "VALIDATION_ERROR"
	CodeConflict         = "CONFLICT"
	CodeInProgress       = "CONFLICT_IN_PROGRESS"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeTooLarge         = "PAYLOAD_TOO_LARGE"
	CodeRateLimited      = "TOO_MANY_REQUESTS"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeInternal         = "INTERNAL"
)

// AppError is an error that knows how to present itself over HTTP.
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	HTTPStatus int               `json:"-"`
	Cause      error             `json:"-"`
	Details    map[string]string `json:"details,omitempty"`
}

// Error returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error { return e.Cause }

// NotFound returns a 404 with the given message.
func NotFound(format string, args ...any) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...), HTTPStatus: http.StatusNotFound}
}

// BadRequest returns a 400 for malformed input.
func BadRequest(format string, args ...any) *AppError {
	return &AppError{Code: CodeBadRequest, Message: fmt.Sprintf(format, args...), HTTPStatus: http.StatusBadRequest}
}

// Validation returns a 400 carrying per-field messages.
func Validation(details map[string]string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    "Validation failed",
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// Conflict returns a 409 for unique-constraint violations.
func Conflict(format string, args ...any) *AppError {
	return &AppError{Code: CodeConflict, Message: fmt.Sprintf(format, args...), HTTPStatus: http.StatusConflict}
}

// MethodNotAllowed returns a 405.
func MethodNotAllowed(method string) *AppError {
	return &AppError{
		Code:       CodeMethodNotAllowed,
		Message:    fmt.Sprintf("Method %s is not allowed", method),
		HTTPStatus: http.StatusMethodNotAllowed,
	}
}

// TooLarge returns a 413.
func TooLarge(msg string) *AppError {
	return &AppError{Code: CodeTooLarge, Message: msg, HTTPStatus: http.StatusRequestEntityTooLarge}
}

// InProgress returns a 409 for a request whose idempotency key is still
// being processed.
func InProgress(msg string) *AppError {
	return &AppError{Code: CodeInProgress, Message: msg, HTTPStatus: http.StatusConflict}
}

// RateLimited returns a 429.
func RateLimited() *AppError {
	return &AppError{Code: CodeRateLimited, Message: "Rate limit exceeded", HTTPStatus: http.StatusTooManyRequests}
}

// Unavailable returns a 503 for a missing optional dependency.
func Unavailable(msg string) *AppError {
	return &AppError{Code: CodeUnavailable, Message: msg, HTTPStatus: http.StatusServiceUnavailable}
}

// Internal wraps an unexpected error as a 500. The cause is never shown to
// clients.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// As extracts the *AppError from err's chain, or converts any other error
// into an Internal error.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// Write sends e as a JSON error body with its HTTP status.
func Write(w http.ResponseWriter, e *AppError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.HTTPStatus)
	json.NewEncoder(w).Encode(e)
}

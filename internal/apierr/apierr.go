// Package apierr defines the error taxonomy surfaced to API clients. Every
// business-rule failure is classified into one of these before it reaches the
// response writer; nothing leaves a handler unclassified.
package apierr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeValidationFailure  = "VALIDATION_FAILURE"
	CodeInternal           = "INTERNAL"
)

type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func Unauthenticated(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeUnauthenticated, Message: message}
}

func InvalidCredentials() *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeInvalidCredentials, Message: "invalid username or password"}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Code: CodeForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Code: CodeConflict, Message: message}
}

// Validation tags the failure with the offending field so clients can
// distinguish, say, an underage birth_date from a non-member assignee.
func Validation(field, message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidationFailure, Message: message, Field: field}
}

func Internal() *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "internal server error"}
}

// Write maps err onto the taxonomy and writes the JSON error body. Anything
// that is not an *Error is logged and reported as internal.
func Write(ctx *gin.Context, err error) {
	var apiErr *Error

	if !errors.As(err, &apiErr) {
		slog.Error("unclassified error", "error", err, "path", ctx.FullPath())
		apiErr = Internal()
	}

	ctx.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
}

// Package apperror defines the error taxonomy surfaced by the API and
// its mapping onto HTTP responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound covers a task/goal/subtask that is absent or not owned by
// the caller. Ownership misses are indistinguishable from absence.
func NotFound(resource, id string) *Error {
	return &Error{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %s not found", resource, id),
	}
}

// CapacityExceeded covers the staging zone limit and the per-user task
// and goal ceilings.
func CapacityExceeded(message string) *Error {
	return &Error{
		Status:  http.StatusConflict,
		Code:    "CAPACITY_EXCEEDED",
		Message: message,
	}
}

func Conflict(message string) *Error {
	return &Error{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: message,
	}
}

// Unauthorized covers credentials that parse but are no longer
// acceptable, like a revoked or superseded refresh token.
func Unauthorized(message string) *Error {
	return &Error{
		Status:  http.StatusUnauthorized,
		Code:    "UNAUTHORIZED",
		Message: message,
	}
}

func Validation(message string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

// Store wraps a failed persistence call. The wrapped error is kept for
// logs but never serialized to the caller.
func Store(message string, err error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    "STORE_ERROR",
		Message: message,
		Err:     err,
	}
}

func IsNotFound(err error) bool         { return hasCode(err, "NOT_FOUND") }
func IsCapacityExceeded(err error) bool { return hasCode(err, "CAPACITY_EXCEEDED") }
func IsValidation(err error) bool       { return hasCode(err, "VALIDATION_ERROR") }
func IsUnauthorized(err error) bool     { return hasCode(err, "UNAUTHORIZED") }

func hasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// Abort writes the error response and stops the handler chain. Unknown
// errors become a generic internal failure so store details never leak.
func Abort(c *gin.Context, err error) {
	var e *Error
	if errors.As(err, &e) {
		c.AbortWithStatusJSON(e.Status, gin.H{"error": e.Message, "code": e.Code})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
		"code":  "INTERNAL_ERROR",
	})
}

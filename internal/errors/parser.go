package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a code plus a message safe to show to clients
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError turns storage errors into client-facing codes.
// context names the operation, e.g. "address create".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "internal server error"}
	}

	errLower := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	// postgres 23505 / sqlite UNIQUE
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}

	// postgres 23503
	if strings.Contains(errLower, "foreign key constraint") {
		if strings.Contains(errLower, "still referenced") {
			return ErrorInfo{Code: ResourceConflict, Message: "record is still referenced and cannot be deleted"}
		}
		return ErrorInfo{Code: ResourceNotFound, Message: "referenced record not found"}
	}

	// postgres 23502 / sqlite NOT NULL
	if strings.Contains(errLower, "violates not-null constraint") || strings.Contains(errLower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "a required field is missing"}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "an upstream service is unavailable, please try again later",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultErrorMessage(context)}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "order_number"):
		return ErrorInfo{Code: ResourceConflict, Message: "order number collision, please resubmit"}
	case strings.Contains(errLower, "open_id"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "user already registered"}
	case strings.Contains(errLower, "order_cancel_jobs"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "order already has a cancellation scheduled"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "record already exists"}
}

func notFoundMessage(context string) string {
	c := strings.ToLower(context)
	switch {
	case strings.Contains(c, "order"):
		return "order not found"
	case strings.Contains(c, "address"):
		return "address not found"
	case strings.Contains(c, "cart"):
		return "cart item not found"
	case strings.Contains(c, "goods"):
		return "goods not found"
	case strings.Contains(c, "user"):
		return "user not found"
	}
	return "requested record not found"
}

func defaultErrorMessage(context string) string {
	c := strings.ToLower(context)
	switch {
	case strings.Contains(c, "create"):
		return "failed to create, please try again later"
	case strings.Contains(c, "update"):
		return "failed to update, please try again later"
	case strings.Contains(c, "delete"):
		return "failed to delete, please try again later"
	}
	return "internal server error, please try again later"
}

// ParseAndRespond parses err and writes it with statusCode
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	info := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict")
	ErrInternal           = errors.New("internal error")
	ErrRateLimited        = errors.New("rate limited")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Error codes for client-correctable validation failures. The upload
// reconciliation flow maps every one of these to HTTP 400.
const (
	CodeMissingField       = "MISSING_FIELD"
	CodeInvalidEnum        = "INVALID_ENUM"
	CodeCategoryMismatch   = "CATEGORY_MISMATCH"
	CodeNotFound           = "NOT_FOUND"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeAssetMissing       = "ASSET_MISSING"
)

// AppError represents an application error with HTTP status and error code.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Field      string `json:"-"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(code string, message string, statusCode int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// Common error constructors.

// MissingField creates an error for a required field that was not provided.
func MissingField(field string) *AppError {
	return &AppError{
		Code:       CodeMissingField,
		Message:    fmt.Sprintf("field %q is required", field),
		Field:      field,
		StatusCode: http.StatusBadRequest,
		Err:        ErrBadRequest,
	}
}

// InvalidEnum creates an error for a value outside a closed enumeration.
func InvalidEnum(field string, allowed []string) *AppError {
	return &AppError{
		Code:       CodeInvalidEnum,
		Message:    fmt.Sprintf("field %q must be one of: %v", field, allowed),
		Field:      field,
		StatusCode: http.StatusBadRequest,
		Err:        ErrBadRequest,
	}
}

// CategoryMismatch creates an error for an object key whose namespace prefix
// does not match the category the field expects.
func CategoryMismatch(field, wantPrefix string) *AppError {
	return &AppError{
		Code:       CodeCategoryMismatch,
		Message:    fmt.Sprintf("field %q expects an object key under %q", field, wantPrefix),
		Field:      field,
		StatusCode: http.StatusBadRequest,
		Err:        ErrBadRequest,
	}
}

// NotFound creates a not found error.
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
		Err:        ErrNotFound,
	}
}

// StorageUnavailable creates an error for a failed signing-primitive call.
func StorageUnavailable(err error) *AppError {
	return &AppError{
		Code:       CodeStorageUnavailable,
		Message:    "object storage is unavailable",
		StatusCode: http.StatusBadRequest,
		Err:        fmt.Errorf("%w: %w", ErrStorageUnavailable, err),
	}
}

// ValidationError creates a generic domain-field validation error.
func ValidationError(message string) *AppError {
	return &AppError{
		Code:       CodeValidationFailed,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        ErrBadRequest,
	}
}

// AssetMissing creates an error for a referenced object the store cannot find.
func AssetMissing(key string) *AppError {
	return &AppError{
		Code:       CodeAssetMissing,
		Message:    fmt.Sprintf("stored object %q does not exist", key),
		StatusCode: http.StatusNotFound,
		Err:        ErrNotFound,
	}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Err:        ErrUnauthorized,
	}
}

// Forbidden creates a forbidden error.
func Forbidden(message string) *AppError {
	if message == "" {
		message = "access denied"
	}
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    message,
		StatusCode: http.StatusForbidden,
		Err:        ErrForbidden,
	}
}

// Internal creates an internal error.
func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// GetStatusCode returns the appropriate HTTP status code for an error.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrStorageUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

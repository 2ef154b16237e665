// Package errors provides standardized error handling for careerbot components.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeCatalogLoadFailed       ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodeCatalogValidationFailed ErrorCode = "CATALOG_VALIDATION_FAILED"

	ErrCodeArtifactLoadFailed ErrorCode = "ARTIFACT_LOAD_FAILED"
	ErrCodeArtifactSaveFailed ErrorCode = "ARTIFACT_SAVE_FAILED"
	ErrCodeDimensionMismatch  ErrorCode = "DIMENSION_MISMATCH"
	ErrCodeTrainingFailed     ErrorCode = "TRAINING_FAILED"

	ErrCodeSessionNotFound    ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"

	ErrCodeInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidControl ErrorCode = "INVALID_CONTROL"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches any StandardError carrying the same code, so sentinel values like
// ErrSessionNotFound work with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Sentinels usable with errors.Is.
var (
	ErrCatalogLoad       = &StandardError{Code: ErrCodeCatalogLoadFailed}
	ErrCatalogValidation = &StandardError{Code: ErrCodeCatalogValidationFailed}
	ErrArtifactLoad      = &StandardError{Code: ErrCodeArtifactLoadFailed}
	ErrDimensionMismatch = &StandardError{Code: ErrCodeDimensionMismatch}
	ErrSessionNotFound   = &StandardError{Code: ErrCodeSessionNotFound}
	ErrSessionStore      = &StandardError{Code: ErrCodeSessionStoreFailed}
	ErrInvalidInput      = &StandardError{Code: ErrCodeInvalidInput}
	ErrInvalidControl    = &StandardError{Code: ErrCodeInvalidControl}
)

// ==========================
// 2. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewCatalogLoadFailedError is returned when the intent catalog cannot be read or parsed.
func NewCatalogLoadFailedError(path string, err error) *StandardError {
	return newError(ErrCodeCatalogLoadFailed, "Intent catalog could not be loaded",
		fmt.Sprintf("path: %s, error: %s", path, errDetails(err)), false, err)
}

// NewCatalogValidationFailedError is returned when a catalog record is missing required fields.
func NewCatalogValidationFailedError(index int, details string) *StandardError {
	return newError(ErrCodeCatalogValidationFailed, "Intent record failed validation",
		fmt.Sprintf("record: %d, %s", index, details), false, nil).
		WithMetadata("record", index)
}

// NewArtifactLoadFailedError is returned when trained model artifacts are missing or inconsistent.
func NewArtifactLoadFailedError(name string, err error) *StandardError {
	return newError(ErrCodeArtifactLoadFailed, "Model artifact could not be loaded",
		fmt.Sprintf("artifact: %s, error: %s", name, errDetails(err)), false, err)
}

func NewArtifactSaveFailedError(name string, err error) *StandardError {
	return newError(ErrCodeArtifactSaveFailed, "Model artifact could not be written",
		fmt.Sprintf("artifact: %s, error: %s", name, errDetails(err)), false, err)
}

// NewDimensionMismatchError is a contract violation between vectorizer and network.
func NewDimensionMismatchError(expected, actual int) *StandardError {
	return newError(ErrCodeDimensionMismatch, "Feature vector dimension does not match model input",
		fmt.Sprintf("expected: %d, actual: %d", expected, actual), false, nil).
		WithMetadata("expected", expected).
		WithMetadata("actual", actual)
}

func NewTrainingFailedError(details string, err error) *StandardError {
	return newError(ErrCodeTrainingFailed, "Model training failed", details, false, err)
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	return newError(ErrCodeSessionNotFound, "Session not found",
		fmt.Sprintf("sessionId: %s", sessionID), false, nil).
		WithMetadata("sessionId", sessionID)
}

// NewSessionStoreFailedError creates a retryable session persistence error.
func NewSessionStoreFailedError(op string, err error) *StandardError {
	return newError(ErrCodeSessionStoreFailed, "Session store operation failed",
		fmt.Sprintf("op: %s, error: %s", op, errDetails(err)), true, err)
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false, nil)
}

// NewInvalidControlError is returned when a host control is used outside the state that offers it.
func NewInvalidControlError(control, state string) *StandardError {
	return newError(ErrCodeInvalidControl, "Control not available in current state",
		fmt.Sprintf("control: %s, state: %s", control, state), false, nil).
		WithMetadata("control", control).
		WithMetadata("state", state)
}

func NewInternalError(details string) *StandardError {
	return newError(ErrCodeInternal, "Internal error", details, false, nil)
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatusMapping maps internal error codes to HTTP status codes for the host adapter.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeCatalogLoadFailed:       http.StatusInternalServerError,
	ErrCodeCatalogValidationFailed: http.StatusInternalServerError,
	ErrCodeArtifactLoadFailed:      http.StatusInternalServerError,
	ErrCodeArtifactSaveFailed:      http.StatusInternalServerError,
	ErrCodeDimensionMismatch:       http.StatusInternalServerError,
	ErrCodeTrainingFailed:          http.StatusInternalServerError,
	ErrCodeSessionNotFound:         http.StatusNotFound,
	ErrCodeSessionStoreFailed:      http.StatusServiceUnavailable,
	ErrCodeInvalidInput:            http.StatusBadRequest,
	ErrCodeInvalidControl:          http.StatusConflict,
}

// HTTPStatus returns the status code for an error code, defaulting to 500.
func HTTPStatus(code ErrorCode) int {
	if status, ok := HTTPStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSessionStoreFailed:
		return 3
	default:
		return 0
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// CodeOf returns the error code carried by err, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return Normalize(err).Code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "ARTIFACT") || strings.Contains(codeStr, "DIMENSION") || strings.Contains(codeStr, "TRAINING"):
		return "MODEL"
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a failure class returned to API clients
type ErrorCode string

const (
	// Request errors
	ErrCodeValidation      ErrorCode = "VALIDATION"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField    ErrorCode = "MISSING_FIELD"
	ErrCodeRequestTooLarge ErrorCode = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited     ErrorCode = "RATE_LIMITED"

	// Lookup errors
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// Ingestion errors
	ErrCodeIngestionInProgress ErrorCode = "INGESTION_IN_PROGRESS"
	ErrCodeNotEntitled         ErrorCode = "NOT_ENTITLED"
	ErrCodeNotEligible         ErrorCode = "NOT_ELIGIBLE"

	// Dependency errors
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE"
	ErrCodeServiceDown     ErrorCode = "SERVICE_DOWN"
	ErrCodeInternal        ErrorCode = "INTERNAL"
)

var httpCodes = map[ErrorCode]int{
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeMissingField:        http.StatusBadRequest,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:         http.StatusTooManyRequests,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeIngestionInProgress: http.StatusConflict,
	ErrCodeNotEntitled:         http.StatusForbidden,
	ErrCodeNotEligible:         http.StatusUnprocessableEntity,
	ErrCodeExternalService:     http.StatusBadGateway,
	ErrCodeServiceDown:         http.StatusServiceUnavailable,
}

// AppError is an error that knows how it should be reported over HTTP
type AppError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Details  map[string]interface{} `json:"details,omitempty"`
	Cause    error                  `json:"-"`
	HTTPCode int                    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail attaches a key to the error's details
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying cause so errors.Is can match it
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// GetHTTPCode returns the explicit status if one was set, otherwise the
// code's default
func (e *AppError) GetHTTPCode() int {
	if e.HTTPCode != 0 {
		return e.HTTPCode
	}
	return StatusFor(e.Code)
}

// StatusFor maps an error code to its HTTP status. Unknown codes are 500.
func StatusFor(code ErrorCode) int {
	if status, ok := httpCodes[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: StatusFor(code)}
}

// Wrap keeps cause in the chain so errors.Is still sees it
func Wrap(cause error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause, HTTPCode: StatusFor(code)}
}

func NotFound(resource string, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

func ValidationError(field string, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func MissingFieldError(field string) *AppError {
	return New(ErrCodeMissingField, fmt.Sprintf("required field '%s' is missing", field)).
		WithDetail("field", field)
}

// IngestionInProgress reports that a channel already has a running ingestion
func IngestionInProgress(channelID, teamID string) *AppError {
	return New(ErrCodeIngestionInProgress, "an ingestion is already running for this channel").
		WithDetail("channelId", channelID).
		WithDetail("teamId", teamID)
}

// NotEntitled reports a team without an active entitlement for a channel
func NotEntitled(teamID, channelID string) *AppError {
	return New(ErrCodeNotEntitled, "team is not entitled to ingest this channel").
		WithDetail("teamId", teamID).
		WithDetail("channelId", channelID)
}

// As finds the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func Is(err error, code ErrorCode) bool {
	if appErr, ok := As(err); ok {
		return appErr.Code == code
	}
	return false
}

// GetCode returns the code of the first AppError in err's chain, or
// ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

func GetHTTPCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.GetHTTPCode()
	}
	return http.StatusInternalServerError
}

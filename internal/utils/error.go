package utils

import (
	"fmt"
	"net/http"
)

// Error codes with HTTP status mapping
const (
	// General errors
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeValidationFailed   = "VALIDATION_ERROR"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"

	// Resolution outcomes
	ErrCodeSchemaUnavailable = "SCHEMA_UNAVAILABLE"
	ErrCodeNoEntityMatch     = "NO_ENTITY_MATCH"

	// Execution errors
	ErrCodeBackendFailure = "BACKEND_FAILURE"
	ErrCodeQueryTimeout   = "QUERY_TIMEOUT"
	ErrCodeNoData         = "NO_DATA"

	// Legacy gateway errors
	ErrCodeProtocolDisabled = "PROTOCOL_DISABLED"
	ErrCodeMalformedWire    = "MALFORMED_WIRE"
	ErrCodeSyncFailed       = "SYNC_FAILED"
)

// HTTPStatus maps error codes to HTTP status codes
var HTTPStatus = map[string]int{
	ErrCodeInvalidRequest:     http.StatusBadRequest,
	ErrCodeValidationFailed:   http.StatusUnprocessableEntity,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeInternalError:      http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeRateLimitExceeded:  http.StatusTooManyRequests,

	ErrCodeSchemaUnavailable: http.StatusServiceUnavailable,
	ErrCodeNoEntityMatch:     http.StatusOK,
	ErrCodeBackendFailure:    http.StatusBadGateway,
	ErrCodeQueryTimeout:      http.StatusGatewayTimeout,
	ErrCodeNoData:            http.StatusOK,

	ErrCodeProtocolDisabled: http.StatusBadGateway,
	ErrCodeMalformedWire:    http.StatusBadGateway,
	ErrCodeSyncFailed:       http.StatusInternalServerError,
}

// AppError represents an application error with additional context
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates an AppError with the default message for the code.
func NewAppError(code string, cause error, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: getDefaultMessage(code),
		Details: details,
		Cause:   cause,
	}
}

// NewBackendFailure wraps a connectivity/statement/permission failure so it
// never crosses the executor boundary as an unhandled fault.
func NewBackendFailure(cause error, details string) *AppError {
	return NewAppError(ErrCodeBackendFailure, cause, details)
}

// NewNoData marks a well-formed but empty result; distinct from failure.
func NewNoData(details string) *AppError {
	return NewAppError(ErrCodeNoData, nil, details)
}

func getDefaultMessage(code string) string {
	messages := map[string]string{
		ErrCodeInvalidRequest:     "The request is invalid",
		ErrCodeValidationFailed:   "Validation failed",
		ErrCodeUnauthorized:       "Unauthorized access",
		ErrCodeNotFound:           "Resource not found",
		ErrCodeInternalError:      "Internal server error",
		ErrCodeServiceUnavailable: "Service temporarily unavailable",
		ErrCodeRateLimitExceeded:  "Rate limit exceeded",

		ErrCodeSchemaUnavailable: "Schema introspection failed; using heuristic defaults",
		ErrCodeNoEntityMatch:     "No table or column matched; used hardcoded default",
		ErrCodeBackendFailure:    "Backend execution failed",
		ErrCodeQueryTimeout:      "Query timed out",
		ErrCodeNoData:            "No data found",

		ErrCodeProtocolDisabled: "Tally XML interface is not enabled",
		ErrCodeMalformedWire:    "Response contained malformed XML fragments",
		ErrCodeSyncFailed:       "Incremental sync failed",
	}

	if msg, exists := messages[code]; exists {
		return msg
	}
	return "Unknown error"
}

// IsErrorType checks if an error matches a specific error code
func IsErrorType(err error, code string) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// GetErrorStatus returns the HTTP status code for an error
func GetErrorStatus(err error) int {
	if appErr, ok := err.(*AppError); ok {
		if status, exists := HTTPStatus[appErr.Code]; exists {
			return status
		}
	}
	return http.StatusInternalServerError
}

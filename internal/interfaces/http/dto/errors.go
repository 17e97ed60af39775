package dto

import (
	"net/http"

	"github.com/carbonlink/backend/internal/domain/connection"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for binding and validator errors
	ErrCodeValidation = "ERR_VALIDATION"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the actor lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the bearer token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the bearer token cannot be verified
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	// ErrCodeTokenRevoked is used when the token or its company was revoked
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState = "ERR_INVALID_STATE"
)

// Input error codes
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Relationship error codes. These keep the domain codes so clients can tell
// the conflict reasons apart.
const (
	ErrCodeRelationshipOwnership         = connection.CodeOwnership
	ErrCodeRelationshipAlreadyConnected  = connection.CodeAlreadyConnected
	ErrCodeRelationshipAlreadyPending    = connection.CodeAlreadyPending
	ErrCodeRelationshipAlreadyRejected   = connection.CodeAlreadyRejected
	ErrCodeRelationshipIllegalTransition = connection.CodeIllegalTransition
	ErrCodeCompaniesNotFound             = connection.CodeCompaniesNotFound
	ErrCodeRelationshipNotFound          = connection.CodeNotFound
)

// Recommendation error codes
const (
	ErrCodeRecommendationStatusConflict    = "RECOMMENDATION_STATUS_CONFLICT"
	ErrCodeRecommendationInvalidTransition = "RECOMMENDATION_INVALID_TRANSITION"
	ErrCodeRecommendationForbidden         = "RECOMMENDATION_FORBIDDEN"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	"INVALID_INVITE_TYPE":  http.StatusBadRequest,
	"INVALID_COMPANY":      http.StatusBadRequest,
	"INVALID_NOTE":         http.StatusBadRequest,

	// Relationships
	ErrCodeRelationshipOwnership:         http.StatusForbidden,
	ErrCodeRelationshipAlreadyConnected:  http.StatusConflict,
	ErrCodeRelationshipAlreadyPending:    http.StatusConflict,
	ErrCodeRelationshipAlreadyRejected:   http.StatusConflict,
	ErrCodeRelationshipIllegalTransition: http.StatusConflict,
	ErrCodeCompaniesNotFound:             http.StatusNotFound,
	ErrCodeRelationshipNotFound:          http.StatusNotFound,

	// Recommendations
	ErrCodeRecommendationStatusConflict:    http.StatusConflict,
	ErrCodeRecommendationInvalidTransition: http.StatusConflict,
	ErrCodeRecommendationForbidden:         http.StatusForbidden,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// genericErrorCodeMapping maps the shared domain sentinels to API codes
var genericErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode converts a shared domain code to the API format.
// Domain-specific codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := genericErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}

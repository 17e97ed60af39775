package dto

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenRevoked, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{"INVALID_INVITE_TYPE", http.StatusBadRequest},
		{"INVALID_NOTE", http.StatusBadRequest},
		{ErrCodeRelationshipOwnership, http.StatusForbidden},
		{ErrCodeRelationshipAlreadyConnected, http.StatusConflict},
		{ErrCodeRelationshipAlreadyPending, http.StatusConflict},
		{ErrCodeRelationshipAlreadyRejected, http.StatusConflict},
		{ErrCodeRelationshipIllegalTransition, http.StatusConflict},
		{ErrCodeCompaniesNotFound, http.StatusNotFound},
		{ErrCodeRelationshipNotFound, http.StatusNotFound},
		{ErrCodeRecommendationForbidden, http.StatusForbidden},
		{ErrCodeRecommendationStatusConflict, http.StatusConflict},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"ALREADY_EXISTS", ErrCodeAlreadyExists},
		{"CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict},
		{"FORBIDDEN", ErrCodeForbidden},
		// Domain codes pass through unchanged
		{ErrCodeRelationshipAlreadyPending, ErrCodeRelationshipAlreadyPending},
		{ErrCodeNotFound, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponseWithRequestID("NOT_FOUND", "Relationship not found", "req-123")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Relationship not found", resp.Error.Message)
	assert.Equal(t, "req-123", resp.Error.RequestID)
	assert.False(t, resp.Error.Timestamp.Before(before))
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "invite_type", Message: "This field is required"},
		{Field: "note", Message: "Must be at most 2000 characters"},
	}

	resp := NewValidationErrorResponse("Request validation failed", "req-789", details)

	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "invite_type", resp.Error.Details[0].Field)
}

func TestErrorResponseJSON(t *testing.T) {
	data, err := json.Marshal(NewErrorResponseWithRequestID(ErrCodeRelationshipAlreadyRejected, "rejected", "req-1"))
	assert.NoError(t, err)

	var decoded Response
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.Success)
	assert.Equal(t, ErrCodeRelationshipAlreadyRejected, decoded.Error.Code)
	assert.Equal(t, "req-1", decoded.Error.RequestID)
}

func TestNewSuccessResponseWithMetaPagination(t *testing.T) {
	tests := []struct {
		total         int64
		pageSize      int
		expectedPages int
		expectedSize  int
	}{
		{100, 10, 10, 10},
		{101, 10, 11, 10},
		{0, 10, 0, 10},
		{9, 10, 1, 10},
		{100, 0, 5, 20},
		{100, -1, 5, 20},
	}

	for _, tt := range tests {
		resp := NewSuccessResponseWithMeta(nil, tt.total, 1, tt.pageSize)
		assert.Equal(t, tt.expectedPages, resp.Meta.TotalPages)
		assert.Equal(t, tt.expectedSize, resp.Meta.PageSize)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/carbonlink/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testInviteRequest struct {
	TargetCompanyID string `json:"target_company_id" binding:"required,uuid"`
	InviteType      string `json:"invite_type" binding:"required,oneof=SUPPLIER CUSTOMER"`
	Note            string `json:"note" binding:"max=10"`
	Quantity        int    `json:"quantity" binding:"min=1"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/invite", func(c *gin.Context) {
		var req testInviteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBindingError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/invite", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleBindingError_Valid(t *testing.T) {
	w := postJSON(newValidationRouter(),
		`{"target_company_id":"6f1c1f7e-8a55-4d42-9f1e-3f4b7f2a9c10","invite_type":"SUPPLIER","quantity":1}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHandleBindingError_ValidationDetails(t *testing.T) {
	w := postJSON(newValidationRouter(), `{"target_company_id":"nope","invite_type":"PARTNER","note":"far too long a note","quantity":0}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	info := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeValidation, info.Code)

	byField := make(map[string]string, len(info.Details))
	for _, d := range info.Details {
		byField[d.Field] = d.Message
	}
	assert.Equal(t, "Invalid UUID format", byField["target_company_id"])
	assert.Equal(t, "Must be one of: SUPPLIER CUSTOMER", byField["invite_type"])
	assert.Equal(t, "Must be at most 10 characters", byField["note"])
	assert.Equal(t, "Must be at least 1", byField["quantity"])
}

func TestHandleBindingError_Required(t *testing.T) {
	w := postJSON(newValidationRouter(), `{"quantity":2}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	info := decodeError(t, w)
	require.Len(t, info.Details, 2)
	for _, d := range info.Details {
		assert.Equal(t, "This field is required", d.Message)
	}
}

func TestHandleBindingError_MalformedJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax error", `{"target_company_id":`},
		{"not json", `hello`},
		{"empty body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(newValidationRouter(), tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, dto.ErrCodeInvalidJSON, decodeError(t, w).Code)
		})
	}
}

func TestHandleBindingError_TypeMismatch(t *testing.T) {
	w := postJSON(newValidationRouter(), `{"target_company_id":"6f1c1f7e-8a55-4d42-9f1e-3f4b7f2a9c10","invite_type":"SUPPLIER","quantity":"three"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	info := decodeError(t, w)
	assert.Equal(t, dto.ErrCodeValidation, info.Code)
	require.Len(t, info.Details, 1)
	assert.Equal(t, "quantity", info.Details[0].Field)
}

func TestValidationDetails_NonValidatorError(t *testing.T) {
	assert.Nil(t, ValidationDetails(assert.AnError))
}

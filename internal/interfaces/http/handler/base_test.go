package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carbonlink/backend/internal/domain/connection"
	"github.com/carbonlink/backend/internal/domain/recommendation"
	"github.com/carbonlink/backend/internal/domain/shared"
	"github.com/carbonlink/backend/internal/infrastructure/logger"
	"github.com/carbonlink/backend/internal/interfaces/http/dto"
	"github.com/carbonlink/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setPrincipal simulates the actor middleware
func setPrincipal(c *gin.Context, actor connection.Actor, permissions ...string) {
	c.Set(middleware.PrincipalKey, &middleware.Principal{Actor: actor, Permissions: permissions})
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name: "from context",
			setup: func(c *gin.Context) {
				c.Set(logger.GinRequestIDKey, "ctx-request-id")
			},
			expectedID: "ctx-request-id",
		},
		{
			name: "from header when context empty",
			setup: func(c *gin.Context) {
				c.Request.Header.Set(middleware.RequestIDHeader, "header-request-id")
			},
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set(logger.GinRequestIDKey, "ctx-id")
				c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"ownership", connection.ErrOwnership, http.StatusForbidden, connection.CodeOwnership},
		{"already connected", connection.ErrAlreadyConnected, http.StatusConflict, connection.CodeAlreadyConnected},
		{"already pending", connection.ErrAlreadyPending, http.StatusConflict, connection.CodeAlreadyPending},
		{"already rejected", connection.ErrAlreadyRejected, http.StatusConflict, connection.CodeAlreadyRejected},
		{"illegal transition", connection.ErrIllegalTransition, http.StatusConflict, connection.CodeIllegalTransition},
		{"companies not found", connection.ErrCompaniesNotFound, http.StatusNotFound, connection.CodeCompaniesNotFound},
		{"relationship not found", connection.ErrNotFound, http.StatusNotFound, connection.CodeNotFound},
		{"wrapped domain error", fmt.Errorf("update: %w", connection.ErrIllegalTransition), http.StatusConflict, connection.CodeIllegalTransition},
		{"recommendation forbidden", recommendation.ErrNotTarget, http.StatusForbidden, "RECOMMENDATION_FORBIDDEN"},
		{"recommendation conflict", recommendation.ErrStatusMismatch, http.StatusConflict, "RECOMMENDATION_STATUS_CONFLICT"},
		{"generic not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"plain error", assert.AnError, http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set(logger.GinRequestIDKey, "req-1")

			h := &BaseHandler{}
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
			assert.Len(t, c.Errors, 1)
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		(&BaseHandler{}).HandleError(c, nil)

		assert.False(t, c.Writer.Written())
	})
}

func TestBaseHandler_ParseUUIDParam(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	_, ok := (&BaseHandler{}).parseUUIDParam(c, "id")

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, decodeResponse(t, w).Error.Code)
}

func TestBaseHandler_GetActor(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		want := connection.Actor{UserID: uuid.New(), CompanyID: uuid.New()}
		setPrincipal(c, want)

		got, ok := (&BaseHandler{}).getActor(c)
		require.True(t, ok)
		assert.Equal(t, want, got)
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		_, ok := (&BaseHandler{}).getActor(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

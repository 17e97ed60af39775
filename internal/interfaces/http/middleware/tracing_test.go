package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})
	return tp, sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, attr := range span.Attributes() {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

func newTracedRouter(tp *sdktrace.TracerProvider) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(Tracing(TracingConfig{Enabled: true, ServiceName: "carbonlink-test", TracerProvider: tp}))
	router.Use(Actor(ActorConfig{JWTService: newTestJWTService(), AllowHeaderIdentity: true, SkipPaths: []string{"/health"}}))
	router.Use(SpanAttributes())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.PATCH("/api/v1/relationships/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.POST("/api/v1/relationships", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusConflict)
	})
	return router
}

func TestTracing_Disabled(t *testing.T) {
	tp, sr := setupTestTracer(t)

	router := gin.New()
	router.Use(Tracing(TracingConfig{Enabled: false, TracerProvider: tp}))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_SpanPerRequest(t *testing.T) {
	tp, sr := setupTestTracer(t)
	router := newTracedRouter(tp)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Name(), "/health")
}

func TestSpanAttributes_ActorAndRequestID(t *testing.T) {
	tp, sr := setupTestTracer(t)
	router := newTracedRouter(tp)

	userID, companyID := uuid.New(), uuid.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/relationships/"+uuid.NewString(), nil)
	req.Header.Set(RequestIDHeader, "req-trace-1")
	req.Header.Set(UserIDHeader, userID.String())
	req.Header.Set(CompanyIDHeader, companyID.String())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]

	v, ok := spanAttr(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-trace-1", v.AsString())
	v, ok = spanAttr(span, "company_id")
	require.True(t, ok)
	assert.Equal(t, companyID.String(), v.AsString())
	v, ok = spanAttr(span, "user_id")
	require.True(t, ok)
	assert.Equal(t, userID.String(), v.AsString())
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestSpanAttributes_ErrorResponse(t *testing.T) {
	tp, sr := setupTestTracer(t)
	router := newTracedRouter(tp)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/relationships", nil)
	req.Header.Set(UserIDHeader, uuid.NewString())
	req.Header.Set(CompanyIDHeader, uuid.NewString())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusConflict, w.Code)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]

	assert.Equal(t, codes.Error, span.Status().Code)
	v, ok := spanAttr(span, "error.detail")
	require.True(t, ok)
	assert.Equal(t, assert.AnError.Error(), v.AsString())
}

func TestSpanAttributes_NoSpan(t *testing.T) {
	router := gin.New()
	router.Use(SpanAttributes())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// Package router assembles the gin engine and mounts the API route groups.
package router

import (
	"github.com/carbonlink/backend/internal/infrastructure/logger"
	"github.com/carbonlink/backend/internal/infrastructure/telemetry"
	"github.com/carbonlink/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured
const DefaultMaxBodyBytes int64 = 1 << 20

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes under /api/<version>
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// EngineConfig configures the middleware chain built by NewEngine
type EngineConfig struct {
	Logger         *zap.Logger
	ServiceName    string
	TracingEnabled bool
	// TracerProvider defaults to the global provider
	TracerProvider trace.TracerProvider
	MeterProvider  *telemetry.MeterProvider
	MaxBodyBytes   int64
	TrustedProxies []string
	Actor          middleware.ActorConfig
}

// NewEngine builds a gin engine with the standard middleware chain:
// recovery, request ID, tracing, access log, security headers, body limit,
// actor resolution, span attributes and HTTP metrics. Actor resolution is
// skipped for /health.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Actor.Logger == nil {
		cfg.Actor.Logger = cfg.Logger
	}
	cfg.Actor.SkipPaths = append(cfg.Actor.SkipPaths, "/health")

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		logger.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName:    cfg.ServiceName,
			Enabled:        cfg.TracingEnabled,
			TracerProvider: cfg.TracerProvider,
		}),
		logger.GinMiddleware(cfg.Logger),
		middleware.Secure(),
		middleware.BodyLimit(cfg.MaxBodyBytes),
		middleware.Actor(cfg.Actor),
		middleware.SpanAttributes(),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: cfg.MeterProvider,
			Enabled:       cfg.MeterProvider != nil,
			Logger:        cfg.Logger,
		}),
	)
	return engine, nil
}

package router

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-registry/internal/config"
	"github.com/jwalitptl/patient-registry/internal/handler/prometheus"
	"github.com/jwalitptl/patient-registry/internal/middleware"
)

// Handler mounts its routes on the authenticated /api group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// AuthHandler mounts routes on both the public and the authenticated group.
type AuthHandler interface {
	RegisterRoutes(public, protected *gin.RouterGroup)
}

type RouterConfig struct {
	ExposeErrors bool
	HSTS         bool
	CORS         config.CORSConfig
	RateLimit    config.RateLimitConfig
	MaxBodyBytes int64
}

// NewRouterConfig derives the HTTP settings from the application config.
func NewRouterConfig(cfg *config.Config) RouterConfig {
	return RouterConfig{
		ExposeErrors: cfg.App.IsDevelopment(),
		HSTS:         cfg.App.IsProduction(),
		CORS:         cfg.CORS,
		RateLimit:    cfg.RateLimit,
		MaxBodyBytes: cfg.App.MaxBodyMB << 20,
	}
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	authH    AuthHandler
	handlers []Handler
	health   gin.HandlerFunc
	noRoute  gin.HandlerFunc
	metrics  *prometheus.Handler
	config   RouterConfig
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH AuthHandler,
	health gin.HandlerFunc,
	noRoute gin.HandlerFunc,
	metrics *prometheus.Handler,
	config RouterConfig,
	handlers ...Handler,
) *Router {
	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		authH:    authH,
		handlers: handlers,
		health:   health,
		noRoute:  noRoute,
		metrics:  metrics,
		config:   config,
	}

	// ErrorHandler sits ahead of the limiters so that their aborts are rendered.
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		metrics.Middleware(),
		middleware.ErrorHandler(config.ExposeErrors),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig(config.HSTS)),
		middleware.CORS(config.CORS),
	)

	if config.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(config.RateLimit.Requests, config.RateLimit.Window)
		engine.Use(limiter.RateLimit())
	}

	sizeLimit := middleware.DefaultSizeLimitConfig()
	if config.MaxBodyBytes > 0 {
		sizeLimit.MaxBodySize = config.MaxBodyBytes
	}
	engine.Use(middleware.SizeLimit(sizeLimit))

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/health", r.health)
	r.engine.HEAD("/health", r.health)
	r.engine.GET("/metrics", r.metrics.Handler())

	api := r.engine.Group("/api", middleware.NoStore())
	protected := api.Group("", r.auth.Authenticate())

	r.authH.RegisterRoutes(api, protected)
	for _, h := range r.handlers {
		h.RegisterRoutes(protected)
	}

	r.engine.NoRoute(r.noRoute)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/restaurant/backend/internal/infrastructure/logger"
	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"github.com/restaurant/backend/internal/interfaces/http/dto"
	"github.com/restaurant/backend/internal/interfaces/http/handler"
	"github.com/restaurant/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// DefaultMaxBodySize bounds request bodies when Options.MaxBodySize is unset
const DefaultMaxBodySize int64 = 1 << 20

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	MenuItem *handler.MenuItemHandler
	Bill     *handler.BillHandler
	Health   *handler.HealthHandler
}

// Options configure the engine middleware stack. RateLimiter, when set, and
// Profiling apply to the /api routes only.
type Options struct {
	Logger         *zap.Logger
	Meter          *telemetry.MeterProvider
	Tracing        middleware.TracingConfig
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	MaxBodySize    int64
	TrustedProxies []string
	Swagger        bool
	RateLimiter    *middleware.RateLimiter
	Profiling      bool
}

// NewEngine builds the gin engine with the full middleware stack and every route
func NewEngine(h Handlers, opts Options) (*gin.Engine, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("router: trusted proxies: %w", err)
	}

	// Recovery wraps everything; the logger runs inside the span so log
	// lines carry trace ids.
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.TracingWithConfig(opts.Tracing),
		middleware.SpanAttributes(),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(opts.Meter),
		middleware.CORSWithConfig(opts.CORS),
		middleware.SecureWithConfig(opts.Security),
		middleware.BodyLimit(opts.MaxBodySize),
	)

	engine.NoRoute(func(c *gin.Context) {
		abortWithCode(c, dto.CodeRouteNotFound, fmt.Sprintf("No route for %s %s", c.Request.Method, c.Request.URL.Path))
	})
	engine.NoMethod(func(c *gin.Context) {
		abortWithCode(c, dto.CodeMethodNotAllowed, fmt.Sprintf("Method %s is not allowed on %s", c.Request.Method, c.Request.URL.Path))
	})

	if h.Health != nil {
		engine.GET("/health", h.Health.Health)
	}
	if opts.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	if opts.RateLimiter != nil {
		r.Use(middleware.RateLimit(opts.RateLimiter))
	}
	if opts.Profiling {
		r.Use(middleware.Profiling())
	}
	if h.MenuItem != nil {
		r.Register(MenuItemRoutes(h.MenuItem))
	}
	if h.Bill != nil {
		r.Register(BillRoutes(h.Bill))
	}
	r.Setup()

	return engine, nil
}

// MenuItemRoutes maps the menu catalog endpoints
func MenuItemRoutes(h *handler.MenuItemHandler) *DomainGroup {
	return NewDomainGroup("menuitem", "/menuitem").
		GET("", h.List).
		GET("/page/:pageNum", h.ListPage).
		GET("/:id", h.GetByID).
		POST("", h.Create).
		POST("/image-upload-url", h.ImageUploadURL).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete)
}

// BillRoutes maps the bill endpoints
func BillRoutes(h *handler.BillHandler) *DomainGroup {
	return NewDomainGroup("bill", "/bill").
		GET("", h.List).
		GET("/page/:pageNum", h.ListPage).
		GET("/:id", h.GetByID).
		POST("", h.Create).
		DELETE("/:id", h.Delete).
		PUT("/:id/payment", h.Pay).
		PUT("/:id/add-order", h.AddOrder).
		DELETE("/:id/remove-order", h.RemoveOrder)
}

func abortWithCode(c *gin.Context, code, message string) {
	c.Set(middleware.ErrorCodeKey, code)
	c.AbortWithStatusJSON(dto.NewErrorResponse(code, message))
}

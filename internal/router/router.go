package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/bcdservices/dashboard-api/internal/middleware"
	"github.com/bcdservices/dashboard-api/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// Handlers groups the route owners. Health is public; the others sit
// behind authentication when it is enabled.
type Handlers struct {
	Health   Handler
	Schedule Handler
	Product  Handler
	Client   Handler
	Invoice  Handler
	Revenue  Handler
}

type RouterConfig struct {
	RateLimit      rate.Limit
	RateBurst      int
	CORSConfig     middleware.CORSConfig
	RequestTimeout time.Duration
	MaxBodySize    int64
	// ProductMaxAge is how long browsers may cache the product list, in
	// seconds.
	ProductMaxAge int
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	config   RouterConfig
}

// NewRouter builds the engine with the core middleware chain. A nil auth
// leaves the API open.
func NewRouter(handlers Handlers, auth *middleware.AuthMiddleware, m *metrics.Metrics, config RouterConfig) *Router {
	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		config:   config,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(m),
		middleware.Recovery(),
		middleware.SecurityHeaders(),
		middleware.CORS(config.CORSConfig),
		middleware.ErrorHandler(),
		middleware.Validation(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.RequestTimeout}),
	)

	if config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	maxBody := config.MaxBodySize
	if maxBody <= 0 {
		maxBody = middleware.DefaultMaxBodySize
	}
	engine.Use(middleware.SizeLimit(maxBody))

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(api)
	}

	protected := api.Group("")
	if r.auth != nil {
		protected.Use(r.auth.Authenticate())
	}
	r.setupProtectedRoutes(protected)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	live := rg.Group("")
	live.Use(middleware.NoStore())
	for _, h := range []Handler{r.handlers.Schedule, r.handlers.Client, r.handlers.Invoice, r.handlers.Revenue} {
		if h != nil {
			h.RegisterRoutes(live)
		}
	}

	if r.handlers.Product != nil {
		catalog := rg.Group("")
		catalog.Use(middleware.CacheControl(r.config.ProductMaxAge))
		r.handlers.Product.RegisterRoutes(catalog)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

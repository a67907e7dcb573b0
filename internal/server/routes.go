package server

import (
	"net/http"
	"time"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/metrics"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	// every error leaves as an ErrorResponse
	e.HTTPErrorHandler = JSONErrorHandler(h.Logger)

	e.Use(SetJSONContentType)
	e.Use(SetNoCacheHeaders)

	// Optional API key authentication
	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key",
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/v1/health"
			},
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil
			},
			ErrorHandler: func(_ error, c echo.Context) error {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Code: http.StatusUnauthorized})
			},
		}))
	}

	if cfg.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(cfg.Gatherer)))
	}

	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)
	v1.GET("/config", h.Config)
	v1.GET("/tokens", h.Tokens)
	v1.GET("/quote", h.Quote)
	v1.GET("/pools/:address/stats", h.PoolStats)

	swapRate := cfg.SwapRate
	if swapRate <= 0 {
		swapRate = 1
	}
	swapBurst := cfg.SwapBurst
	if swapBurst <= 0 {
		swapBurst = 3
	}

	// swap submission is rate limited per client IP
	swaps := v1.Group("/swaps")
	swaps.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(swapRate),
			Burst:     swapBurst,
			ExpiresIn: 2 * time.Minute,
		}),
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded", Code: http.StatusTooManyRequests})
		},
	}))
	swaps.POST("", h.ExecuteSwap)

	// Feature flags CRUD endpoints
	flagGroup := v1.Group("/flags")
	flagGroup.GET("", h.FlagsList)
	flagGroup.POST("", h.FlagsUpsert)
	flagGroup.GET("/:key", h.FlagsGet)
	flagGroup.PUT("/:key", h.FlagsUpdate)
	flagGroup.DELETE("/:key", h.FlagsDelete)

	// Catch-all route for 404 responses
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}

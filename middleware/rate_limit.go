package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the configuration for rate limiting
type RateLimitConfig struct {
	// Requests is the number of requests allowed per Window, also used as the burst
	Requests int
	// Window is the period over which Requests are spread
	Window time.Duration
	// KeyFunc returns the identity being limited (defaults to the client IP)
	KeyFunc func(c echo.Context) string
	// Message is the error message returned when the limit is exceeded
	Message string
}

func (cfg *RateLimitConfig) withDefaults() {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c echo.Context) string { return c.RealIP() }
	}
	if cfg.Message == "" {
		cfg.Message = "Too many requests. Please try again later."
	}
	if cfg.Requests <= 0 {
		cfg.Requests = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
}

// RateLimit builds a token bucket limiter per key on top of echo's memory store
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	cfg.withDefaults()
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		Burst:     cfg.Requests,
		ExpiresIn: 2 * cfg.Window,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return cfg.KeyFunc(c), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, cfg.Message)
		},
	})
}

// LoginRateLimit limits login attempts to 5 per minute per IP
func LoginRateLimit() echo.MiddlewareFunc {
	return RateLimit(RateLimitConfig{
		Requests: 5,
		Window:   time.Minute,
		Message:  "Too many login attempts. Please wait a minute before trying again.",
	})
}

// RewardClaimRateLimit limits reward code guesses to 10 per hour per IP
func RewardClaimRateLimit() echo.MiddlewareFunc {
	return RateLimit(RateLimitConfig{
		Requests: 10,
		Window:   time.Hour,
		Message:  "Too many reward claim attempts. Please try again later.",
	})
}

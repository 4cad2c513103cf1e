package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/repo/redisstore"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
	"github.com/ragzy-ai/ragzy-api/pkg/util"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

var errRateLimited = models.NewError(http.StatusTooManyRequests, "rate limit exceeded")

type RateLimitConfig struct {
	Skipper Skipper
	Limiter redisstore.RateLimiter
	// Prefix separates the counters of differently limited route groups.
	Prefix   string
	Requests int
	Window   time.Duration
	// Whitelist holds client IPs that are never limited.
	Whitelist []string
	KeyFunc   func(c echo.Context) string
}

// RateLimit counts requests per client IP in fixed windows. Limiter errors
// let the request through.
func RateLimit(config RateLimitConfig) echo.MiddlewareFunc {
	if config.Limiter == nil {
		panic("Limiter is required to use RateLimit")
	}
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}
	if config.KeyFunc == nil {
		config.KeyFunc = func(c echo.Context) string {
			return c.RealIP()
		}
	}
	rejected, err := util.GetCounterVec("http_rate_limited_total", "Requests rejected by the rate limiter.", "group")
	if err != nil {
		panic(err)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}
			key := config.KeyFunc(c)
			if util.SliceIncludes(config.Whitelist, key) {
				return next(c)
			}

			ctx := c.Request().Context()
			result, err := config.Limiter.CheckAndIncrement(ctx, config.Prefix+":"+key, config.Requests, config.Window)
			if err != nil {
				log.Warnw(ctx, "rate limiter unavailable", "key", key, "error", err)
				return next(c)
			}

			header := c.Response().Header()
			header.Set(HeaderRateLimitLimit, strconv.Itoa(config.Requests))
			header.Set(HeaderRateLimitRemaining, strconv.Itoa(result.Remaining))
			header.Set(HeaderRateLimitReset, strconv.FormatInt(result.ResetAt.Unix(), 10))
			if !result.Allowed {
				rejected.WithLabelValues(config.Prefix).Inc()
				return errRateLimited
			}
			return next(c)
		}
	}
}

package middleware

import (
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"
)

const (
	corsAllowHeaders = "*, Authorization"
	corsAllowMethods = "OPTIONS, POST, PUT, DELETE, GET, PATCH, HEAD"
)

type CORSConfig struct {
	// AllowOrigin matches the origins allowed to call the dashboard API.
	AllowOrigin *regexp.Regexp
	// Public reports whether the route may be called from any origin, like
	// the routes used by the embedded widget.
	Public func(c echo.Context) bool
}

// CORS return echo middleware that handle cors with regexp pattern
func CORS(pattern *regexp.Regexp) echo.MiddlewareFunc {
	return CORSWithConfig(CORSConfig{AllowOrigin: pattern})
}

func CORSWithConfig(config CORSConfig) echo.MiddlewareFunc {
	if config.Public == nil {
		config.Public = DefaultSkipper
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			respHeader := c.Response().Header()
			if config.Public(c) {
				respHeader.Set(echo.HeaderAccessControlAllowOrigin, "*")
				return preflightOrNext(c, next)
			}

			respHeader.Set(echo.HeaderVary, echo.HeaderOrigin)
			origin := c.Request().Header.Get(echo.HeaderOrigin)
			if origin == "" || config.AllowOrigin == nil || !config.AllowOrigin.MatchString(origin) {
				return next(c)
			}
			respHeader.Set(echo.HeaderAccessControlAllowOrigin, origin)
			return preflightOrNext(c, next)
		}
	}
}

func preflightOrNext(c echo.Context, next echo.HandlerFunc) error {
	if c.Request().Method != http.MethodOptions {
		return next(c)
	}
	respHeader := c.Response().Header()
	// `*` only may not cover Authorization header in Safari 12
	respHeader.Set(echo.HeaderAccessControlAllowHeaders, corsAllowHeaders)
	respHeader.Set(echo.HeaderAccessControlAllowMethods, corsAllowMethods)
	return c.NoContent(http.StatusNoContent)
}

package middleware

import (
	"context"
	"regexp"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
)

const (
	XRequestID     = "X-Request-Id"
	XCorrelationID = "X-Correlation-Id"
)

type requestIDKey struct{}

// Inbound ids come from public widget callers too, so only short opaque
// tokens are trusted.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

type RequestIDConfig struct {
	Skipper  Skipper
	Generate func() string
}

var DefaultRequestIDConfig = RequestIDConfig{
	Skipper:  DefaultSkipper,
	Generate: uuid.NewString,
}

// RequestID reuses a valid X-Request-Id or X-Correlation-Id header, otherwise
// generates one. The id is echoed in the response and added to the log
// fields of the request context.
func RequestID() echo.MiddlewareFunc {
	return RequestIDWithConfig(DefaultRequestIDConfig)
}

func RequestIDWithConfig(config RequestIDConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}
	if config.Generate == nil {
		config.Generate = uuid.NewString
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}
			reqID := inboundRequestID(c)
			if reqID == "" {
				reqID = config.Generate()
			}

			ctx := context.WithValue(c.Request().Context(), requestIDKey{}, reqID)
			ctx = log.WithFields(ctx, "request_id", reqID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(XRequestID, reqID)
			c.Response().Header().Set(XRequestID, reqID)
			return next(c)
		}
	}
}

func inboundRequestID(c echo.Context) string {
	h := c.Request().Header
	for _, name := range []string{XRequestID, XCorrelationID} {
		if id := h.Get(name); validRequestID.MatchString(id) {
			return id
		}
	}
	return ""
}

// GetRequestID returns the id assigned by RequestID, or "" outside of it.
func GetRequestID(c echo.Context) string {
	id, _ := c.Get(XRequestID).(string)
	return id
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

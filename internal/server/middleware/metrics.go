package middleware

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ragzy-ai/ragzy-api/pkg/util"
)

const (
	httpRequestsDuration = "request_duration_seconds"
	notFoundPath         = "/not-found"
)

type MetricsConfig struct {
	Skipper             Skipper
	NormalizeHTTPStatus bool
	MetricsPath         string

	// Surface names the API surface a request belongs to, so public widget
	// traffic can be told apart from dashboard traffic.
	Surface func(c echo.Context) string
}

var DefaultMetricsConfig = MetricsConfig{
	Skipper:     DefaultSkipper,
	MetricsPath: "/metrics",
	Surface:     SurfaceByPrefix,
}

var surfacePrefixes = []struct {
	prefix  string
	surface string
}{
	{"/api/v1/", "dashboard"},
	{"/api/widget/", "widget"},
	{"/api/emails/", "email"},
	{"/api/", "integration"},
}

// SurfaceByPrefix maps the route pattern to dashboard, widget, email,
// integration or internal.
func SurfaceByPrefix(c echo.Context) string {
	path := c.Path()
	for _, p := range surfacePrefixes {
		if strings.HasPrefix(path, p.prefix) {
			return p.surface
		}
	}
	return "internal"
}

func normalizeHTTPStatus(status int) string {
	switch {
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	}
	return "5xx"
}

func isNotFoundHandler(handler echo.HandlerFunc) bool {
	return reflect.ValueOf(handler).Pointer() == reflect.ValueOf(echo.NotFoundHandler).Pointer()
}

// Metrics records request durations and serves /metrics.
func Metrics() echo.MiddlewareFunc {
	return MetricsWithConfig(DefaultMetricsConfig)
}

func MetricsWithConfig(config MetricsConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}
	if config.Surface == nil {
		config.Surface = SurfaceByPrefix
	}
	durations, err := util.GetHistogramVec(httpRequestsDuration, "code", "method", "path", "surface")
	if err != nil {
		panic(err)
	}

	var promHandler echo.HandlerFunc
	if config.MetricsPath != "" {
		promHandler = echo.WrapHandler(promhttp.Handler())
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if promHandler != nil && req.URL.Path == config.MetricsPath {
				return promHandler(c)
			}
			if config.Skipper(c) {
				return next(c)
			}

			// unmatched paths share one label value
			path := c.Path()
			if isNotFoundHandler(c.Handler()) {
				path = notFoundPath
			}
			surface := config.Surface(c)

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := strconv.Itoa(c.Response().Status)
			if config.NormalizeHTTPStatus {
				status = normalizeHTTPStatus(c.Response().Status)
			}
			durations.WithLabelValues(status, req.Method, path, surface).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragzy-ai/ragzy-api/pkg/util"
)

func resetRequestDurations(t *testing.T) {
	t.Helper()
	durations, err := util.GetHistogramVec(httpRequestsDuration, "code", "method", "path", "surface")
	require.NoError(t, err)
	durations.Reset()
}

func serve(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestMetrics(t *testing.T) {
	resetRequestDurations(t)

	e := echo.New()
	e.Use(Metrics())
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/api/widget/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Param("id"))
	})
	e.POST("/api/emails/welcome", func(c echo.Context) error {
		return errors.New("provider down")
	})

	for i := 0; i < 3; i++ {
		serve(e, http.MethodGet, "/api/widget/w-"+string(rune('a'+i)))
	}
	serve(e, http.MethodGet, "/health")
	serve(e, http.MethodPost, "/api/emails/welcome")
	serve(e, http.MethodGet, "/unknown-1")
	serve(e, http.MethodGet, "/unknown-2")

	rec := serve(e, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `request_duration_seconds_count{code="200",method="GET",path="/api/widget/:id",surface="widget"} 3`)
	assert.Contains(t, body, `request_duration_seconds_count{code="200",method="GET",path="/health",surface="internal"} 1`)
	assert.Contains(t, body, `request_duration_seconds_count{code="500",method="POST",path="/api/emails/welcome",surface="email"} 1`)
	assert.Contains(t, body, `request_duration_seconds_count{code="404",method="GET",path="/not-found",surface="internal"} 2`)
}

func TestMetricsNormalizedStatus(t *testing.T) {
	resetRequestDurations(t)

	e := echo.New()
	e.Use(MetricsWithConfig(MetricsConfig{
		NormalizeHTTPStatus: true,
		MetricsPath:         "/metrics",
	}))
	e.GET("/api/v1/workspaces", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	serve(e, http.MethodGet, "/api/v1/workspaces")
	body := serve(e, http.MethodGet, "/metrics").Body.String()
	assert.Contains(t, body, `request_duration_seconds_count{code="2xx",method="GET",path="/api/v1/workspaces",surface="dashboard"} 1`)
}

func TestNormalizeHTTPStatus(t *testing.T) {
	for status, want := range map[int]string{
		101: "1xx",
		201: "2xx",
		307: "3xx",
		429: "4xx",
		502: "5xx",
	} {
		assert.Equal(t, want, normalizeHTTPStatus(status))
	}
}

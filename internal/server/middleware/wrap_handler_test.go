package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingRequest struct {
	Name string `query:"name"`
}

func serveWrapped(t *testing.T, fn any, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	e.JSONSerializer = JSONSerializer{}
	e.GET("/ping", WrapHandler(fn))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestWrapHandlerResults(t *testing.T) {
	tests := []struct {
		name       string
		fn         any
		wantStatus int
		wantBody   string
	}{
		{
			name: "data envelope",
			fn: func(_ echo.Context, req pingRequest) (map[string]string, error) {
				return map[string]string{"hello": req.Name}, nil
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true,"data":{"hello":"ann"}}`,
		},
		{
			name:       "error only",
			fn:         func(echo.Context, pingRequest) error { return nil },
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true}`,
		},
		{
			name: "raw backend json",
			fn: func(echo.Context, pingRequest) (json.RawMessage, error) {
				return json.RawMessage(`{"connected":true}`), nil
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"connected":true}`,
		},
		{
			name: "custom response",
			fn: func(echo.Context, pingRequest) (*Response, error) {
				return &Response{Status: http.StatusCreated, Success: true, Message: "created"}, nil
			},
			wantStatus: http.StatusCreated,
			wantBody:   `{"success":true,"message":"created"}`,
		},
		{
			name: "handler wrote the response",
			fn: func(c echo.Context, _ pingRequest) (any, error) {
				return nil, c.String(http.StatusAccepted, "queued")
			},
			wantStatus: http.StatusAccepted,
			wantBody:   "queued",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveWrapped(t, tt.fn, "/ping?name=ann")
			assert.Equal(t, tt.wantStatus, rec.Code)
			if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			} else {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestWrapHandlerError(t *testing.T) {
	rec := serveWrapped(t, func(echo.Context, pingRequest) (any, error) {
		return nil, errors.New("boom")
	}, "/ping")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWrapHandlerRejectsBadSignatures(t *testing.T) {
	for name, fn := range map[string]any{
		"not a function":     "handler",
		"missing request":    func(echo.Context) error { return nil },
		"context not first":  func(pingRequest, echo.Context) error { return nil },
		"request not struct": func(echo.Context, string) error { return nil },
		"no results":         func(echo.Context, pingRequest) {},
		"last not error":     func(echo.Context, pingRequest) (string, string) { return "", "" },
	} {
		t.Run(name, func(t *testing.T) {
			_, err := wrapHandler(fn)
			require.Error(t, err)
			assert.Panics(t, func() { WrapHandler(fn) })
		})
	}
}

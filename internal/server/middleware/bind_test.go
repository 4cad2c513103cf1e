package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

func TestBindHeader(t *testing.T) {
	type widgetHeaders struct {
		Origin  string  `header:"Origin"`
		Version int     `header:"X-Widget-Version"`
		Retries uint8   `header:"X-Retry-Count"`
		Score   float64 `header:"X-Score"`
		Debug   bool    `header:"X-Debug"`
		Ignored string  `header:"-"`
		Plain   string
	}

	header := http.Header{}
	header.Set("Origin", "https://shop.example.com")
	header.Set("X-Widget-Version", "-3")
	header.Set("X-Retry-Count", "2")
	header.Set("X-Score", "0.75")
	header.Set("Plain", "untouched")

	got := widgetHeaders{Debug: true}
	require.NoError(t, bindHeader(header, &got))
	assert.Equal(t, widgetHeaders{
		Origin:  "https://shop.example.com",
		Version: -3,
		Retries: 2,
		Score:   0.75,
		Debug:   true,
	}, got, "absent headers keep their current value")

	type strict struct {
		Debug bool `header:"X-Debug"`
	}
	header.Set("X-Debug", "sometimes")
	err := bindHeader(header, &strict{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot parse strict.Debug as bool")

	assert.Error(t, bindHeader(header, strict{}), "non-pointer target")
}

func TestBindUser(t *testing.T) {
	type request struct {
		UserID string `auth:"id"`
		Email  string `auth:"email"`
		Name   string `auth:"name"`
	}

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	SetUser(c, models.AuthUser{ID: "u1", Email: "olive@ragzy.ai", Name: "Olive"})

	var req request
	require.NoError(t, bindUser(c, &req))
	assert.Equal(t, request{UserID: "u1", Email: "olive@ragzy.ai", Name: "Olive"}, req)

	type unsupported struct {
		Role string `auth:"role"`
	}
	assert.EqualError(t, bindUser(c, &unsupported{}), "binding user field role is not supported")
}

func TestBindAndValidate(t *testing.T) {
	type request struct {
		WorkspaceID string `param:"workspaceId" validate:"required"`
		Email       string `json:"email" validate:"required,email_format"`
		UserID      string `auth:"id"`
	}

	e := echo.New()
	e.Validator = NewValidator()
	e.JSONSerializer = JSONSerializer{}

	newContext := func(body string) echo.Context {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetParamNames("workspaceId")
		c.SetParamValues("ws1")
		SetUser(c, models.AuthUser{ID: "u1"})
		return c
	}

	var req request
	require.NoError(t, BindAndValidate(newContext(`{"email":"olive@ragzy.ai"}`), &req))
	assert.Equal(t, request{WorkspaceID: "ws1", Email: "olive@ragzy.ai", UserID: "u1"}, req)

	err := BindAndValidate(newContext(`{"email":`), &request{})
	assert.Equal(t, http.StatusBadRequest, NewResponseError(err).Status)
	assert.Equal(t, "Invalid request body", NewResponseError(err).ErrorMessage)

	err = BindAndValidate(newContext(`{"email":"not-an-email"}`), &request{})
	assert.Equal(t, "Invalid email format", NewResponseError(err).ErrorMessage)
}

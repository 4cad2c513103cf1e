package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

var (
	DefaultSkipper = func(c echo.Context) bool {
		return false
	}
)

type Skipper func(c echo.Context) bool

// Logger is satisfied by *zap.SugaredLogger.
type Logger interface {
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

// Response is the success envelope of every JSON route.
type Response struct {
	Status    int         `json:"-"`
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	MessageID string      `json:"messageId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// ResponseError is the failure envelope: {"success": false, "error": "..."}.
type ResponseError struct {
	Status       int    `json:"-"`
	Err          error  `json:"-"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error"`
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("status: %d; message: %s; error: %+v", e.Status, e.ErrorMessage, e.Err)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

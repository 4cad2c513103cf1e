package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

// StatusClientClosedRequest is reported when the caller went away before the
// handler finished.
const StatusClientClosedRequest = 499

// NewResponseError maps err to the status and message shown to the caller.
func NewResponseError(err error) *ResponseError {
	resp := &ResponseError{
		Status:       http.StatusInternalServerError,
		Err:          err,
		ErrorMessage: http.StatusText(http.StatusInternalServerError),
	}

	var (
		respErr  *ResponseError
		httpErr  *echo.HTTPError
		modelErr *models.Error
	)
	switch {
	case errors.As(err, &respErr):
		return respErr
	case errors.As(err, &modelErr):
		resp.Status = modelErr.Status
		resp.ErrorMessage = modelErr.Message
	case errors.As(err, &httpErr):
		resp.Status = httpErr.Code
		resp.ErrorMessage = fmt.Sprint(httpErr.Message)
	case errors.Is(err, models.ErrNotFound):
		resp.Status = http.StatusNotFound
		resp.ErrorMessage = "Not found"
	case errors.Is(err, models.ErrAlreadyExists):
		resp.Status = http.StatusConflict
		resp.ErrorMessage = "Already exists"
	case errors.Is(err, models.ErrForbidden):
		resp.Status = http.StatusForbidden
		resp.ErrorMessage = "Forbidden"
	case errors.Is(err, context.Canceled):
		resp.Status = StatusClientClosedRequest
		resp.ErrorMessage = "Request canceled"
	}
	return resp
}

// ErrorHandler return custom http error handler.
func ErrorHandler(log Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if err == nil || c.Response().Committed {
			return
		}

		resp := NewResponseError(err)
		// detect canceled request error, even when wrapped by a backend call
		if errors.Is(err, context.Canceled) && c.Request().Context().Err() == context.Canceled {
			resp.Status = StatusClientClosedRequest
			resp.ErrorMessage = "Request canceled"
		}
		if errors.Is(err, echo.ErrNotFound) {
			resp.ErrorMessage = "no route matched"
		}
		if resp.Status >= http.StatusInternalServerError {
			log.Errorw("request failed", "path", c.Path(), "error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(resp.Status)
		} else {
			err = c.JSON(resp.Status, resp)
		}
		if err != nil {
			log.Errorw("could not response", "code", resp.Status, "response_body", resp)
		}
	}
}

package kafka

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap/zapcore"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

// ErrInvalidEvent marks records that can never be processed.
var ErrInvalidEvent = errors.New("invalid event")

// Status labels of the consumption histogram.
const (
	statusOK       = "ok"
	statusInvalid  = "invalid"
	statusRejected = "rejected"
	statusCanceled = "canceled"
	statusTimeout  = "deadline_exceeded"
	statusError    = "error"
)

func statusOf(err error) string {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, context.DeadlineExceeded):
		return statusTimeout
	case errors.Is(err, context.Canceled):
		return statusCanceled
	case errors.Is(err, ErrInvalidEvent):
		return statusInvalid
	}
	var appErr *models.Error
	if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
		return statusRejected
	}
	return statusError
}

func logLevel(status string) zapcore.Level {
	switch status {
	case statusOK:
		return zapcore.InfoLevel
	case statusInvalid, statusRejected, statusCanceled:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

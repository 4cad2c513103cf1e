package usecase

import (
	"context"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/repo/events"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
)

// EmailSender delivers a rendered email.
type EmailSender interface {
	Send(ctx context.Context, email models.Email) (*models.SendEmailResult, error)
}

// MessageNotifier sends the message notification email.
type MessageNotifier interface {
	SendMessageNotification(ctx context.Context, req models.MessageNotificationEmail) (*models.SendEmailResult, error)
}

// publishEvent is fire and forget; a failed publish never fails the caller.
func publishEvent(ctx context.Context, publisher events.Publisher, typ models.EventType, correlationID string, data any) {
	if err := publisher.Publish(ctx, models.NewEnvelope(typ, correlationID, data)); err != nil {
		log.Warnw(ctx, "failed to publish event", "type", typ, "error", err)
	}
}

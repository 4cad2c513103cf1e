package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

type Consumer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Handler processes one record. The error only decides how the record is
// logged and measured; records are never redelivered.
type Handler func(ctx context.Context, msg kafka.Message) error

// MessageSender stores chat messages relayed by the backend.
type MessageSender interface {
	SendMessage(ctx context.Context, ref models.ConversationRef, params models.SendMessageParams) (*models.ChatMessage, error)
}

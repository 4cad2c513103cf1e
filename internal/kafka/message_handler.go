package kafka

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
)

const patternMessageCreated = "message.created"

type chatEventHandler struct {
	chat     MessageSender
	validate *validator.Validate
}

// NewChatEventHandler stores message.created events from the backend as chat
// messages. Other patterns are skipped.
func NewChatEventHandler(chat MessageSender) Handler {
	h := &chatEventHandler{
		chat:     chat,
		validate: validator.New(),
	}
	return h.Handle
}

func (h *chatEventHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var event models.BackendChatEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("%w: unmarshal event: %v", ErrInvalidEvent, err)
	}
	if event.Pattern != patternMessageCreated {
		log.Debugw(ctx, "ignoring backend chat event", "pattern", event.Pattern)
		return nil
	}

	var data models.BackendMessageCreated
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("%w: unmarshal %s data: %v", ErrInvalidEvent, event.Pattern, err)
	}
	if err := h.validate.Struct(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	ctx = log.WithFields(ctx, "conversation_id", data.ConversationID, "sender", data.Sender)
	_, err := h.chat.SendMessage(ctx, models.ConversationRef{ID: data.ConversationID}, models.SendMessageParams{
		ConversationID: data.ConversationID,
		Text:           data.Text,
		Sender:         data.Sender,
		SenderName:     data.SenderName,
		Metadata:       data.Metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to store backend message: %w", err)
	}
	return nil
}

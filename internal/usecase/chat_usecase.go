package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/repo/events"
	"github.com/ragzy-ai/ragzy-api/internal/repo/mongodb"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
)

const defaultConversationPageSize = 50

var (
	ErrWidgetNotFound       = models.NewError(http.StatusNotFound, "Widget not found")
	ErrConversationNotFound = models.NewError(http.StatusNotFound, "Conversation not found")
)

// MessageNotificationHandler decides whether a new message needs an email.
type MessageNotificationHandler interface {
	HandleMessageNotification(ctx context.Context, params models.MessageNotificationParams) error
}

type ChatUseCase struct {
	widgetRepo       mongodb.WidgetRepository
	conversationRepo mongodb.ConversationRepository
	chatMessageRepo  mongodb.ChatMessageRepository
	notifications    MessageNotificationHandler
	publisher        events.Publisher
	now              func() time.Time
}

func NewChatUseCase(
	widgetRepo mongodb.WidgetRepository,
	conversationRepo mongodb.ConversationRepository,
	chatMessageRepo mongodb.ChatMessageRepository,
	notifications MessageNotificationHandler,
	publisher events.Publisher,
) *ChatUseCase {
	return &ChatUseCase{
		widgetRepo:       widgetRepo,
		conversationRepo: conversationRepo,
		chatMessageRepo:  chatMessageRepo,
		notifications:    notifications,
		publisher:        publisher,
		now:              time.Now,
	}
}

func (uc *ChatUseCase) CreateWidget(ctx context.Context, workspaceID string, params models.WidgetParams) (*models.ChatWidget, error) {
	now := uc.now()
	widget := &models.ChatWidget{
		ID:         models.NewID(),
		BusinessID: workspaceID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	params.ApplyTo(widget)
	widget.IsActive = true

	if err := uc.widgetRepo.Create(ctx, widget); err != nil {
		return nil, fmt.Errorf("failed to create widget: %w", err)
	}
	return widget, nil
}

func (uc *ChatUseCase) GetWidget(ctx context.Context, workspaceID, id string) (*models.ChatWidget, error) {
	widget, err := uc.widgetRepo.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrWidgetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get widget: %w", err)
	}
	if workspaceID != "" && widget.BusinessID != workspaceID {
		return nil, ErrWidgetNotFound
	}
	return widget, nil
}

// GetPublicWidget returns the configuration served to the embed script.
func (uc *ChatUseCase) GetPublicWidget(ctx context.Context, id string) (*models.PublicWidget, error) {
	widget, err := uc.GetWidget(ctx, "", id)
	if err != nil {
		return nil, err
	}
	public := widget.Public()
	return &public, nil
}

func (uc *ChatUseCase) ListWidgets(ctx context.Context, workspaceID string) ([]models.ChatWidget, error) {
	widgets, err := uc.widgetRepo.ListByBusiness(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list widgets: %w", err)
	}
	return widgets, nil
}

func (uc *ChatUseCase) UpdateWidget(ctx context.Context, workspaceID, id string, params models.WidgetParams) (*models.ChatWidget, error) {
	widget, err := uc.GetWidget(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	params.ApplyTo(widget)
	widget.UpdatedAt = uc.now()

	if err := uc.widgetRepo.Replace(ctx, widget); err != nil {
		return nil, fmt.Errorf("failed to update widget: %w", err)
	}
	return widget, nil
}

func (uc *ChatUseCase) DeleteWidget(ctx context.Context, workspaceID, id string) error {
	if _, err := uc.GetWidget(ctx, workspaceID, id); err != nil {
		return err
	}
	return uc.widgetRepo.Delete(ctx, id)
}

func (uc *ChatUseCase) CreateConversation(ctx context.Context, widgetID string, params models.CreateConversationParams) (*models.ChatConversation, error) {
	widget, err := uc.GetWidget(ctx, "", widgetID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	conv := &models.ChatConversation{
		ID:            models.NewID(),
		BusinessID:    widget.BusinessID,
		WidgetID:      widget.ID,
		CustomerName:  params.CustomerName,
		CustomerEmail: params.CustomerEmail,
		Status:        models.ConversationStatusActive,
		HandoverMode:  models.HandoverModeAI,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.conversationRepo.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

func (uc *ChatUseCase) ListConversations(ctx context.Context, workspaceID string, params models.ListConversationsParams) (*mongodb.PaginateWithTotal[models.ChatConversation], error) {
	if params.Limit <= 0 {
		params.Limit = defaultConversationPageSize
	}
	page, err := uc.conversationRepo.ListByBusiness(ctx, workspaceID, params.Limit, params.Skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return page, nil
}

func (uc *ChatUseCase) GetConversation(ctx context.Context, ref models.ConversationRef) (*models.ChatConversation, error) {
	conv, err := uc.conversationRepo.GetByID(ctx, ref.ID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if !ref.Matches(conv) {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}

func (uc *ChatUseCase) updateConversation(ctx context.Context, ref models.ConversationRef, set bson.M, unset ...string) (*models.ChatConversation, error) {
	if _, err := uc.GetConversation(ctx, ref); err != nil {
		return nil, err
	}
	conv, err := uc.conversationRepo.Update(ctx, ref.ID, set, unset...)
	if err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}
	return conv, nil
}

func (uc *ChatUseCase) MarkConversationAsRead(ctx context.Context, ref models.ConversationRef) (*models.ChatConversation, error) {
	return uc.updateConversation(ctx, ref, bson.M{"unreadCount": 0})
}

func (uc *ChatUseCase) UpdateConversationStatus(ctx context.Context, ref models.ConversationRef, params models.UpdateConversationStatusParams) (*models.ChatConversation, error) {
	if params.Status == models.ConversationStatusCustom {
		return uc.updateConversation(ctx, ref, bson.M{
			"status":       params.Status,
			"customStatus": params.CustomStatus,
		})
	}
	return uc.updateConversation(ctx, ref, bson.M{"status": params.Status}, "customStatus")
}

func (uc *ChatUseCase) RequestHandover(ctx context.Context, ref models.ConversationRef, params models.HandoverParams) (*models.ChatConversation, error) {
	return uc.updateConversation(ctx, ref, bson.M{
		"handoverRequested":   true,
		"handoverRequestedAt": uc.now(),
		"handoverMethod":      params.Method,
		"handoverMode":        models.HandoverModeHuman,
	})
}

func (uc *ChatUseCase) ClearHandover(ctx context.Context, ref models.ConversationRef) (*models.ChatConversation, error) {
	return uc.updateConversation(ctx, ref, bson.M{
		"handoverRequested": false,
		"handoverMode":      models.HandoverModeAI,
		"handoverTakenAt":   uc.now(),
	})
}

func (uc *ChatUseCase) SetPresence(ctx context.Context, ref models.ConversationRef, params models.PresenceParams) (*models.ChatConversation, error) {
	field := "customerOnline"
	if params.Side == models.SenderBusiness {
		field = "businessOnline"
	}
	return uc.updateConversation(ctx, ref, bson.M{field: params.Online})
}

// SendMessage stores the message and updates the conversation preview. The
// notification check runs afterwards and never fails the send.
func (uc *ChatUseCase) SendMessage(ctx context.Context, ref models.ConversationRef, params models.SendMessageParams) (*models.ChatMessage, error) {
	conv, err := uc.GetConversation(ctx, ref)
	if err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{
		ID:             models.NewID(),
		ConversationID: conv.ID,
		Text:           params.Text,
		Sender:         params.Sender,
		SenderName:     params.SenderName,
		Metadata:       params.Metadata,
		CreatedAt:      uc.now(),
	}
	if err := uc.chatMessageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	if err := uc.conversationRepo.RecordMessage(ctx, conv.ID, msg); err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}

	err = uc.notifications.HandleMessageNotification(ctx, models.MessageNotificationParams{
		MessageID:      msg.ID,
		ConversationID: conv.ID,
		Sender:         msg.Sender,
		SenderName:     msg.SenderName,
		Text:           msg.Text,
	})
	if err != nil {
		log.Errorw(ctx, "failed to handle message notification", "message_id", msg.ID, "error", err)
	}

	publishEvent(ctx, uc.publisher, models.EventMessageCreated, conv.ID, msg)
	return msg, nil
}

func (uc *ChatUseCase) ListMessages(ctx context.Context, ref models.ConversationRef) ([]models.ChatMessage, error) {
	if _, err := uc.GetConversation(ctx, ref); err != nil {
		return nil, err
	}
	msgs, err := uc.chatMessageRepo.ListByConversation(ctx, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

// MarkMessagesRead marks the messages the reader received as read.
func (uc *ChatUseCase) MarkMessagesRead(ctx context.Context, ref models.ConversationRef, params models.MarkReadParams) (int64, error) {
	if _, err := uc.GetConversation(ctx, ref); err != nil {
		return 0, err
	}
	n, err := uc.chatMessageRepo.MarkRead(ctx, ref.ID, params.Reader.Other(), uc.now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return n, nil
}

package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/server/middleware"
)

// Routes used by the embedded widget. They are public, so the widget id in
// the path scopes every conversation lookup.

type publicWidgetRequest struct {
	WidgetID string `param:"id" json:"-" validate:"required"`
}

type startConversationRequest struct {
	WidgetID string `param:"id" json:"-" validate:"required"`
	models.CreateConversationParams
}

type customerConversationRequest struct {
	WidgetID       string `param:"id" json:"-" validate:"required"`
	ConversationID string `param:"conversationId" json:"-" validate:"required"`
}

func (r customerConversationRequest) ref() models.ConversationRef {
	return models.ConversationRef{ID: r.ConversationID, WidgetID: r.WidgetID}
}

type customerMessageRequest struct {
	WidgetID       string         `param:"id" json:"-" validate:"required"`
	ConversationID string         `param:"conversationId" json:"-" validate:"required"`
	Text           string         `json:"text" validate:"required"`
	SenderName     string         `json:"senderName"`
	Metadata       map[string]any `json:"metadata"`
}

type customerPresenceRequest struct {
	WidgetID       string `param:"id" json:"-" validate:"required"`
	ConversationID string `param:"conversationId" json:"-" validate:"required"`
	Online         bool   `json:"online"`
}

type markReadResult struct {
	Updated int64 `json:"updated"`
}

func (h *controller) GetPublicWidget(c echo.Context, req publicWidgetRequest) (*models.PublicWidget, error) {
	return h.chat.GetPublicWidget(c.Request().Context(), req.WidgetID)
}

func (h *controller) StartConversation(c echo.Context, req startConversationRequest) (*middleware.Response, error) {
	conv, err := h.chat.CreateConversation(c.Request().Context(), req.WidgetID, req.CreateConversationParams)
	if err != nil {
		return nil, err
	}
	return &middleware.Response{Status: http.StatusCreated, Success: true, Data: conv}, nil
}

func (h *controller) SendCustomerMessage(c echo.Context, req customerMessageRequest) (*middleware.Response, error) {
	ref := customerConversationRequest{WidgetID: req.WidgetID, ConversationID: req.ConversationID}.ref()
	msg, err := h.chat.SendMessage(c.Request().Context(), ref, models.SendMessageParams{
		Text:       req.Text,
		Sender:     models.SenderCustomer,
		SenderName: req.SenderName,
		Metadata:   req.Metadata,
	})
	if err != nil {
		return nil, err
	}
	return &middleware.Response{Status: http.StatusCreated, Success: true, Data: msg}, nil
}

func (h *controller) ListCustomerMessages(c echo.Context, req customerConversationRequest) ([]models.ChatMessage, error) {
	return h.chat.ListMessages(c.Request().Context(), req.ref())
}

func (h *controller) SetCustomerPresence(c echo.Context, req customerPresenceRequest) (*models.ChatConversation, error) {
	ref := customerConversationRequest{WidgetID: req.WidgetID, ConversationID: req.ConversationID}.ref()
	return h.chat.SetPresence(c.Request().Context(), ref, models.PresenceParams{
		Side:   models.SenderCustomer,
		Online: req.Online,
	})
}

func (h *controller) MarkCustomerMessagesRead(c echo.Context, req customerConversationRequest) (*markReadResult, error) {
	n, err := h.chat.MarkMessagesRead(c.Request().Context(), req.ref(), models.MarkReadParams{Reader: models.SenderCustomer})
	if err != nil {
		return nil, err
	}
	return &markReadResult{Updated: n}, nil
}

// Dashboard widget management.

type widgetRequest struct {
	WorkspaceID string `param:"workspaceId" json:"-" validate:"required"`
	WidgetID    string `param:"widgetId" json:"-" validate:"required"`
}

type createWidgetRequest struct {
	WorkspaceID string `param:"workspaceId" json:"-" validate:"required"`
	models.WidgetParams
}

type updateWidgetRequest struct {
	WorkspaceID string `param:"workspaceId" json:"-" validate:"required"`
	WidgetID    string `param:"widgetId" json:"-" validate:"required"`
	models.WidgetParams
}

func (h *controller) ListWidgets(c echo.Context, req workspaceRequest) ([]models.ChatWidget, error) {
	return h.chat.ListWidgets(c.Request().Context(), req.WorkspaceID)
}

func (h *controller) CreateWidget(c echo.Context, req createWidgetRequest) (*middleware.Response, error) {
	widget, err := h.chat.CreateWidget(c.Request().Context(), req.WorkspaceID, req.WidgetParams)
	if err != nil {
		return nil, err
	}
	return &middleware.Response{Status: http.StatusCreated, Success: true, Data: widget}, nil
}

func (h *controller) GetWidget(c echo.Context, req widgetRequest) (*models.ChatWidget, error) {
	return h.chat.GetWidget(c.Request().Context(), req.WorkspaceID, req.WidgetID)
}

func (h *controller) UpdateWidget(c echo.Context, req updateWidgetRequest) (*models.ChatWidget, error) {
	return h.chat.UpdateWidget(c.Request().Context(), req.WorkspaceID, req.WidgetID, req.WidgetParams)
}

func (h *controller) DeleteWidget(c echo.Context, req widgetRequest) error {
	return h.chat.DeleteWidget(c.Request().Context(), req.WorkspaceID, req.WidgetID)
}

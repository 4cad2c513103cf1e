package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/server/middleware"
	"github.com/ragzy-ai/ragzy-api/pkg/util"
)

// ConversationPath addresses a conversation of the workspace in the route.
// It is exported so that the binder fills it when embedded in a request.
type ConversationPath struct {
	WorkspaceID    string `param:"workspaceId" json:"-" validate:"required"`
	ConversationID string `param:"conversationId" json:"-" validate:"required"`
}

func (p ConversationPath) ref() models.ConversationRef {
	return models.ConversationRef{ID: p.ConversationID, WorkspaceID: p.WorkspaceID}
}

type listConversationsRequest struct {
	WorkspaceID string `param:"workspaceId" json:"-" validate:"required"`
	models.ListConversationsParams
}

type conversationStatusRequest struct {
	ConversationPath
	models.UpdateConversationStatusParams
}

type handoverRequest struct {
	ConversationPath
	models.HandoverParams
}

type businessPresenceRequest struct {
	ConversationPath
	Online bool `json:"online"`
}

type businessMessageRequest struct {
	ConversationPath
	Text       string         `json:"text" validate:"required"`
	SenderName string         `json:"senderName"`
	Metadata   map[string]any `json:"metadata"`
}

type conversationPage struct {
	Conversations []models.ChatConversation `json:"conversations"`
	Total         int64                     `json:"total"`
}

func (h *controller) ListConversations(c echo.Context, req listConversationsRequest) (*conversationPage, error) {
	page, err := h.chat.ListConversations(c.Request().Context(), req.WorkspaceID, req.ListConversationsParams)
	if err != nil {
		return nil, err
	}
	return &conversationPage{Conversations: page.Data, Total: page.Total}, nil
}

func (h *controller) GetConversation(c echo.Context, req ConversationPath) (*models.ChatConversation, error) {
	return h.chat.GetConversation(c.Request().Context(), req.ref())
}

func (h *controller) MarkConversationRead(c echo.Context, req ConversationPath) (*models.ChatConversation, error) {
	return h.chat.MarkConversationAsRead(c.Request().Context(), req.ref())
}

func (h *controller) UpdateConversationStatus(c echo.Context, req conversationStatusRequest) (*models.ChatConversation, error) {
	return h.chat.UpdateConversationStatus(c.Request().Context(), req.ref(), req.UpdateConversationStatusParams)
}

func (h *controller) RequestHandover(c echo.Context, req handoverRequest) (*models.ChatConversation, error) {
	return h.chat.RequestHandover(c.Request().Context(), req.ref(), req.HandoverParams)
}

func (h *controller) ClearHandover(c echo.Context, req ConversationPath) (*models.ChatConversation, error) {
	return h.chat.ClearHandover(c.Request().Context(), req.ref())
}

func (h *controller) SetBusinessPresence(c echo.Context, req businessPresenceRequest) (*models.ChatConversation, error) {
	return h.chat.SetPresence(c.Request().Context(), req.ref(), models.PresenceParams{
		Side:   models.SenderBusiness,
		Online: req.Online,
	})
}

func (h *controller) ListConversationMessages(c echo.Context, req ConversationPath) ([]models.ChatMessage, error) {
	return h.chat.ListMessages(c.Request().Context(), req.ref())
}

func (h *controller) SendBusinessMessage(c echo.Context, req businessMessageRequest) (*middleware.Response, error) {
	msg, err := h.chat.SendMessage(c.Request().Context(), req.ref(), models.SendMessageParams{
		Text:       req.Text,
		Sender:     models.SenderBusiness,
		SenderName: util.FirstNonEmpty(req.SenderName, currentUser(c).Name),
		Metadata:   req.Metadata,
	})
	if err != nil {
		return nil, err
	}
	return &middleware.Response{Status: http.StatusCreated, Success: true, Data: msg}, nil
}

func (h *controller) MarkBusinessMessagesRead(c echo.Context, req ConversationPath) (*markReadResult, error) {
	n, err := h.chat.MarkMessagesRead(c.Request().Context(), req.ref(), models.MarkReadParams{Reader: models.SenderBusiness})
	if err != nil {
		return nil, err
	}
	return &markReadResult{Updated: n}, nil
}

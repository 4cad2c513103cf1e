package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/repo/backend"
	"github.com/ragzy-ai/ragzy-api/internal/server/middleware"
)

type widgetKnowledgeRequest struct {
	WorkspaceID string `param:"workspaceId" json:"-" validate:"required"`
	WidgetID    string `param:"widgetId" json:"-" validate:"required"`
	models.CreateKnowledgeBaseItemParams
}

type knowledgeItemRequest struct {
	WorkspaceID string `param:"workspaceId" json:"-" validate:"required"`
	ItemID      string `param:"itemId" json:"-" validate:"required"`
}

type agentKnowledgeRequest struct {
	AgentPath
	models.CreateAgentKnowledgeParams
}

type searchRequest struct {
	WorkspaceID string `param:"workspaceId" json:"-" validate:"required"`
	Query       string `query:"query" json:"-"`
}

type importNotionRequest struct {
	AgentPath
	models.ImportNotionParams
}

type importSheetRequest struct {
	AgentPath
	models.ImportSheetParams
}

type authorizeURL struct {
	URL string `json:"url"`
}

func (h *controller) ListWidgetKnowledge(c echo.Context, req widgetRequest) ([]models.KnowledgeBaseItem, error) {
	return h.knowledge.ListKnowledgeBase(c.Request().Context(), req.WorkspaceID, req.WidgetID)
}

func (h *controller) CreateWidgetKnowledge(c echo.Context, req widgetKnowledgeRequest) (*middleware.Response, error) {
	item, err := h.knowledge.CreateKnowledgeBaseItem(c.Request().Context(), req.WorkspaceID, req.WidgetID, req.CreateKnowledgeBaseItemParams)
	if err != nil {
		return nil, err
	}
	return &middleware.Response{Status: http.StatusCreated, Success: true, Data: item}, nil
}

func (h *controller) DeleteWidgetKnowledge(c echo.Context, req knowledgeItemRequest) error {
	return h.knowledge.DeleteKnowledgeBaseItem(c.Request().Context(), req.WorkspaceID, req.ItemID)
}

func (h *controller) ListAgentKnowledge(c echo.Context, req AgentPath) ([]models.AgentKnowledgeItem, error) {
	return h.knowledge.ListAgentKnowledge(c.Request().Context(), req.WorkspaceID, req.AgentID)
}

func (h *controller) CreateAgentKnowledge(c echo.Context, req agentKnowledgeRequest) (*middleware.Response, error) {
	item, err := h.knowledge.CreateAgentKnowledge(c.Request().Context(), req.WorkspaceID, req.AgentID, req.CreateAgentKnowledgeParams)
	if err != nil {
		return nil, err
	}
	return &middleware.Response{Status: http.StatusCreated, Success: true, Data: item}, nil
}

func (h *controller) ListWorkspaceKnowledge(c echo.Context, req workspaceRequest) ([]models.AgentKnowledgeItem, error) {
	return h.knowledge.ListWorkspaceKnowledge(c.Request().Context(), req.WorkspaceID)
}

func (h *controller) DeleteAgentKnowledge(c echo.Context, req knowledgeItemRequest) error {
	return h.knowledge.DeleteAgentKnowledge(c.Request().Context(), req.WorkspaceID, req.ItemID)
}

func (h *controller) SearchNotionPages(c echo.Context, req searchRequest) ([]backend.NotionPage, error) {
	return h.knowledge.SearchNotionPages(c.Request().Context(), req.WorkspaceID, req.Query)
}

func (h *controller) ImportNotion(c echo.Context, req importNotionRequest) (*middleware.Response, error) {
	item, err := h.knowledge.ImportNotion(c.Request().Context(), req.WorkspaceID, req.AgentID, req.ImportNotionParams)
	if err != nil {
		return nil, err
	}
	return &middleware.Response{Status: http.StatusCreated, Success: true, Data: item}, nil
}

func (h *controller) NotionAuthorizeURL(c echo.Context, req AgentPath) (*authorizeURL, error) {
	return &authorizeURL{URL: backend.NotionAuthorizeURL(h.backend, req.WorkspaceID, req.AgentID)}, nil
}

func (h *controller) ListSpreadsheets(c echo.Context, req searchRequest) (*backend.SpreadsheetList, error) {
	return h.knowledge.ListSpreadsheets(c.Request().Context(), req.WorkspaceID, req.Query)
}

func (h *controller) ImportSheet(c echo.Context, req importSheetRequest) (*middleware.Response, error) {
	item, err := h.knowledge.ImportSheet(c.Request().Context(), req.WorkspaceID, req.AgentID, req.ImportSheetParams)
	if err != nil {
		return nil, err
	}
	return &middleware.Response{Status: http.StatusCreated, Success: true, Data: item}, nil
}

func (h *controller) GoogleSheetsAuthorizeURL(c echo.Context, req AgentPath) (*authorizeURL, error) {
	return &authorizeURL{URL: backend.GoogleSheetsAuthorizeURL(h.backend, req.WorkspaceID, req.AgentID)}, nil
}

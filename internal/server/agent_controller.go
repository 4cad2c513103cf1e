package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/server/middleware"
)

// AgentPath addresses an agent of the workspace in the route.
type AgentPath struct {
	WorkspaceID string `param:"workspaceId" json:"-" validate:"required"`
	AgentID     string `param:"agentId" json:"-" validate:"required"`
}

type createAgentRequest struct {
	WorkspaceID string `param:"workspaceId" json:"-" validate:"required"`
	models.CreateAgentParams
}

type updateAgentRequest struct {
	AgentPath
	models.UpdateAgentParams
}

func (h *controller) ListAgents(c echo.Context, req workspaceRequest) ([]models.Agent, error) {
	return h.agents.List(c.Request().Context(), req.WorkspaceID)
}

func (h *controller) CreateAgent(c echo.Context, req createAgentRequest) (*middleware.Response, error) {
	agent, err := h.agents.Create(c.Request().Context(), req.WorkspaceID, currentUser(c), req.CreateAgentParams)
	if err != nil {
		return nil, err
	}
	return &middleware.Response{Status: http.StatusCreated, Success: true, Data: agent}, nil
}

func (h *controller) GetAgent(c echo.Context, req AgentPath) (*models.Agent, error) {
	return h.agents.Get(c.Request().Context(), req.WorkspaceID, req.AgentID)
}

func (h *controller) UpdateAgent(c echo.Context, req updateAgentRequest) (*models.Agent, error) {
	return h.agents.Update(c.Request().Context(), req.WorkspaceID, req.AgentID, req.UpdateAgentParams)
}

func (h *controller) DeleteAgent(c echo.Context, req AgentPath) error {
	return h.agents.Delete(c.Request().Context(), req.WorkspaceID, req.AgentID)
}

func (h *controller) DuplicateAgent(c echo.Context, req AgentPath) (*middleware.Response, error) {
	agent, err := h.agents.Duplicate(c.Request().Context(), req.WorkspaceID, req.AgentID, currentUser(c))
	if err != nil {
		return nil, err
	}
	return &middleware.Response{Status: http.StatusCreated, Success: true, Data: agent}, nil
}

package server

import (
	"github.com/labstack/echo/v4"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

type integrationsRequest struct {
	WorkspaceID string `param:"workspaceId" json:"-" validate:"required"`
	AgentID     string `query:"agentId" json:"-"`
}

type integrationRequest struct {
	WorkspaceID string `param:"workspaceId" json:"-" validate:"required"`
	Provider    string `param:"provider" json:"-" validate:"required"`
	AgentID     string `query:"agentId" json:"-"`
}

type integrationSettingsRequest struct {
	WorkspaceID string `param:"workspaceId" json:"-" validate:"required"`
	Provider    string `param:"provider" json:"-" validate:"required"`
	models.IntegrationSettings
}

func (h *controller) ListIntegrations(c echo.Context, req integrationsRequest) ([]models.ConnectionStatus, error) {
	return h.connections.ListStatuses(c.Request().Context(), req.WorkspaceID, req.AgentID)
}

func (h *controller) GetIntegration(c echo.Context, req integrationRequest) (*models.ConnectionStatus, error) {
	provider, err := h.connections.Resolve(req.Provider)
	if err != nil {
		return nil, err
	}
	return h.connections.Status(c.Request().Context(), provider, req.WorkspaceID, req.AgentID)
}

func (h *controller) DisconnectIntegration(c echo.Context, req integrationRequest) error {
	provider, err := h.connections.Resolve(req.Provider)
	if err != nil {
		return err
	}
	return h.connections.Disconnect(c.Request().Context(), provider, req.WorkspaceID, req.AgentID)
}

// UpdateIntegrationSettings reads the agent from the query string, which the
// binder only fills for GET and DELETE.
func (h *controller) UpdateIntegrationSettings(c echo.Context, req integrationSettingsRequest) (*models.Connection, error) {
	provider, err := h.connections.Resolve(req.Provider)
	if err != nil {
		return nil, err
	}
	return h.connections.UpdateSettings(c.Request().Context(), provider, req.WorkspaceID, c.QueryParam("agentId"), req.IntegrationSettings)
}

package usecase

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/repo/backend"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
	"github.com/ragzy-ai/ragzy-api/pkg/util"
)

// IntegrationBackend is the part of the backend proxied for Zendesk and Calendly.
type IntegrationBackend interface {
	ZendeskConnect(ctx context.Context, req backend.ZendeskConnectRequest) (json.RawMessage, error)
	ZendeskDisconnect(ctx context.Context, req backend.ZendeskDisconnectRequest) (json.RawMessage, error)
	ZendeskCreateTicket(ctx context.Context, req backend.ZendeskTicketRequest) (json.RawMessage, error)
	CalendlyConnect(ctx context.Context, req backend.CalendlyConnectRequest) (json.RawMessage, error)
	CalendlyStatus(ctx context.Context, workspaceID, agentID string) (json.RawMessage, error)
	CalendlyAvailableSlots(ctx context.Context, req backend.CalendlySlotsRequest) (json.RawMessage, error)
}

// ConnectionRemover deletes a locally stored connection.
type ConnectionRemover interface {
	Disconnect(ctx context.Context, provider models.Provider, workspaceID, agentID string) error
}

var (
	errMissingWorkspaceOrAgent = models.BadRequest("Missing workspaceId or agentId")
	errMissingSubdomain        = models.BadRequest("Missing subdomain. Please provide your Zendesk subdomain.")
	errMissingFields           = models.BadRequest("Missing required fields")
	errMissingStatusQuery      = models.BadRequest("Missing workspace_id or agent_id query parameters")
	errMissingSlotsQuery       = models.BadRequest("Missing required parameters: workspace_id, agent_id, or event_type_uri")
)

// ProxyUseCase forwards integration requests to the backend and returns its
// JSON unchanged.
type ProxyUseCase struct {
	backend     IntegrationBackend
	connections ConnectionRemover
}

func NewProxyUseCase(backend IntegrationBackend, connections ConnectionRemover) *ProxyUseCase {
	return &ProxyUseCase{
		backend:     backend,
		connections: connections,
	}
}

func (uc *ProxyUseCase) ZendeskConnect(ctx context.Context, params models.ZendeskConnectParams) (json.RawMessage, error) {
	if params.WorkspaceID == "" || params.AgentID == "" {
		return nil, errMissingWorkspaceOrAgent
	}
	if params.Subdomain == "" {
		return nil, errMissingSubdomain
	}
	return uc.backend.ZendeskConnect(ctx, backend.ZendeskConnectRequest{
		WorkspaceID: params.WorkspaceID,
		AgentID:     params.AgentID,
		Subdomain:   params.Subdomain,
	})
}

// ZendeskDisconnect revokes the connection in the backend, then drops the local record.
func (uc *ProxyUseCase) ZendeskDisconnect(ctx context.Context, params models.ZendeskDisconnectParams) (json.RawMessage, error) {
	if params.WorkspaceID == "" || params.AgentID == "" {
		return nil, errMissingWorkspaceOrAgent
	}
	resp, err := uc.backend.ZendeskDisconnect(ctx, backend.ZendeskDisconnectRequest{
		WorkspaceID: params.WorkspaceID,
		AgentID:     params.AgentID,
	})
	if err != nil {
		return nil, err
	}
	if err := uc.connections.Disconnect(ctx, models.ProviderZendesk, params.WorkspaceID, params.AgentID); err != nil {
		log.Warnw(ctx, "failed to delete local zendesk connection",
			"workspace_id", params.WorkspaceID, "agent_id", params.AgentID, "error", err)
	}
	return resp, nil
}

func (uc *ProxyUseCase) ZendeskCreateTicket(ctx context.Context, params models.ZendeskTicketParams) (json.RawMessage, error) {
	if params.WorkspaceID == "" || params.AgentID == "" || params.Subject == "" || params.CommentBody == "" {
		return nil, errMissingFields
	}
	return uc.backend.ZendeskCreateTicket(ctx, backend.ZendeskTicketRequest{
		WorkspaceID:    params.WorkspaceID,
		AgentID:        params.AgentID,
		Subject:        params.Subject,
		CommentBody:    params.CommentBody,
		RequesterEmail: params.RequesterEmail,
		RequesterName:  util.FirstNonEmpty(params.RequesterName, "Customer"),
		Tags:           params.Tags,
	})
}

func (uc *ProxyUseCase) CalendlyConnect(ctx context.Context, params models.CalendlyConnectParams) (json.RawMessage, error) {
	if params.WorkspaceID == "" || params.AgentID == "" {
		return nil, errMissingWorkspaceOrAgent
	}
	return uc.backend.CalendlyConnect(ctx, backend.CalendlyConnectRequest{
		WorkspaceID: params.WorkspaceID,
		AgentID:     params.AgentID,
	})
}

func (uc *ProxyUseCase) CalendlyStatus(ctx context.Context, params models.CalendlyStatusParams) (json.RawMessage, error) {
	if params.WorkspaceID == "" || params.AgentID == "" {
		return nil, errMissingStatusQuery
	}
	return uc.backend.CalendlyStatus(ctx, params.WorkspaceID, params.AgentID)
}

func (uc *ProxyUseCase) CalendlyAvailableSlots(ctx context.Context, params models.CalendlySlotsParams) (json.RawMessage, error) {
	if params.WorkspaceID == "" || params.AgentID == "" || params.EventTypeURI == "" {
		return nil, errMissingSlotsQuery
	}
	return uc.backend.CalendlyAvailableSlots(ctx, backend.CalendlySlotsRequest{
		WorkspaceID:  params.WorkspaceID,
		AgentID:      params.AgentID,
		EventTypeURI: params.EventTypeURI,
		StartTime:    params.StartTime,
		EndTime:      params.EndTime,
	})
}

package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
)

type CalendlyConnectRequest struct {
	WorkspaceID string `json:"workspace_id"`
	AgentID     string `json:"agent_id"`
}

type CalendlySlotsRequest struct {
	WorkspaceID  string
	AgentID      string
	EventTypeURI string
	StartTime    string
	EndTime      string
}

func (c *client) CalendlyConnect(ctx context.Context, req CalendlyConnectRequest) (json.RawMessage, error) {
	return c.raw(ctx, Request{
		Method:       http.MethodPost,
		Path:         "/api/calendly/connect",
		Body:         req,
		DefaultError: "Failed to initiate Calendly connection",
	})
}

func (c *client) CalendlyStatus(ctx context.Context, workspaceID, agentID string) (json.RawMessage, error) {
	return c.raw(ctx, Request{
		Method: http.MethodGet,
		Path:   "/api/calendly/status",
		Query: url.Values{
			"workspace_id": {workspaceID},
			"agent_id":     {agentID},
		},
		DefaultError: "Failed to get Calendly status",
	})
}

func (c *client) CalendlyAvailableSlots(ctx context.Context, req CalendlySlotsRequest) (json.RawMessage, error) {
	query := url.Values{
		"workspace_id":   {req.WorkspaceID},
		"agent_id":       {req.AgentID},
		"event_type_uri": {req.EventTypeURI},
	}
	if req.StartTime != "" {
		query.Set("start_time", req.StartTime)
	}
	if req.EndTime != "" {
		query.Set("end_time", req.EndTime)
	}
	return c.raw(ctx, Request{
		Method:       http.MethodGet,
		Path:         "/api/calendly/available-slots",
		Query:        query,
		DefaultError: "Failed to fetch available slots",
	})
}

func (c *client) CalendlyCallback(ctx context.Context, req OAuthCallbackRequest) (*CallbackResponse, error) {
	var out CallbackResponse
	err := c.Do(ctx, Request{
		Method:       http.MethodPost,
		Path:         "/api/calendly/callback",
		Body:         req,
		DefaultError: "Failed to connect to Calendly",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

package backend

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"
)

type ZendeskConnectRequest struct {
	WorkspaceID string `json:"workspace_id"`
	AgentID     string `json:"agent_id"`
	Subdomain   string `json:"subdomain"`
}

type ZendeskDisconnectRequest struct {
	WorkspaceID string `json:"workspace_id"`
	AgentID     string `json:"agent_id"`
}

type ZendeskTicketRequest struct {
	WorkspaceID    string   `json:"workspace_id"`
	AgentID        string   `json:"agent_id"`
	Subject        string   `json:"subject"`
	CommentBody    string   `json:"comment_body"`
	RequesterEmail string   `json:"requester_email,omitempty"`
	RequesterName  string   `json:"requester_name"`
	Tags           []string `json:"tags,omitempty"`
}

func (c *client) ZendeskConnect(ctx context.Context, req ZendeskConnectRequest) (json.RawMessage, error) {
	return c.raw(ctx, Request{
		Method:       http.MethodPost,
		Path:         "/api/zendesk/connect",
		Body:         req,
		DefaultError: "Failed to initiate Zendesk connection",
	})
}

func (c *client) ZendeskDisconnect(ctx context.Context, req ZendeskDisconnectRequest) (json.RawMessage, error) {
	return c.raw(ctx, Request{
		Method:       http.MethodPost,
		Path:         "/api/zendesk/disconnect",
		Body:         req,
		DefaultError: "Failed to disconnect Zendesk",
	})
}

func (c *client) ZendeskCreateTicket(ctx context.Context, req ZendeskTicketRequest) (json.RawMessage, error) {
	return c.raw(ctx, Request{
		Method:       http.MethodPost,
		Path:         "/api/zendesk/create-ticket",
		Body:         req,
		DefaultError: "Failed to create Zendesk ticket",
	})
}

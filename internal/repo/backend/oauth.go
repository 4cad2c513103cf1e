package backend

import (
	"context"
	"net/http"
	"net/url"
)

type OAuthCallbackRequest struct {
	Code        string `json:"code"`
	State       string `json:"state"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	AgentID     string `json:"agent_id,omitempty"`
}

type CallbackResponse struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message,omitempty"`
	UserInfo map[string]any `json:"user_info,omitempty"`
}

type NotionTokenResponse struct {
	Success             bool           `json:"success"`
	AccessToken         string         `json:"access_token"`
	NotionWorkspaceID   string         `json:"notion_workspace_id"`
	NotionWorkspaceName string         `json:"notion_workspace_name"`
	NotionWorkspaceIcon string         `json:"notion_workspace_icon"`
	BotID               string         `json:"bot_id"`
	Owner               map[string]any `json:"owner"`
}

type GoogleTokenResponse struct {
	Success      bool   `json:"success"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type WhatsAppCallbackResponse struct {
	Success          bool                  `json:"success"`
	Message          string                `json:"message,omitempty"`
	AccessToken      string                `json:"access_token,omitempty"`
	BusinessAccounts []WhatsAppBusinessAcc `json:"business_accounts,omitempty"`
	PhoneNumberID    string                `json:"phone_number_id,omitempty"`
	PhoneNumber      string                `json:"phone_number,omitempty"`
}

type WhatsAppBusinessAcc struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *client) NotionCallback(ctx context.Context, req OAuthCallbackRequest) (*NotionTokenResponse, error) {
	var out NotionTokenResponse
	err := c.Do(ctx, Request{
		Method:       http.MethodPost,
		Path:         "/api/notion/oauth/callback",
		Body:         OAuthCallbackRequest{Code: req.Code, State: req.State},
		DefaultError: "Failed to exchange Notion authorization code",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) GoogleSheetsCallback(ctx context.Context, req OAuthCallbackRequest) (*GoogleTokenResponse, error) {
	var out GoogleTokenResponse
	err := c.Do(ctx, Request{
		Method:       http.MethodPost,
		Path:         "/api/google-sheets/oauth/callback",
		Body:         OAuthCallbackRequest{Code: req.Code, State: req.State},
		DefaultError: "Failed to exchange Google authorization code",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) WhatsAppCallback(ctx context.Context, req OAuthCallbackRequest) (*WhatsAppCallbackResponse, error) {
	var out WhatsAppCallbackResponse
	err := c.Do(ctx, Request{
		Method:       http.MethodPost,
		Path:         "/api/whatsapp/callback",
		Body:         req,
		DefaultError: "Connection failed",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// NotionAuthorizeURL is where the browser starts the Notion OAuth flow.
func NotionAuthorizeURL(c Client, workspaceID, agentID string) string {
	query := url.Values{"workspace_id": {workspaceID}}
	if agentID != "" {
		query.Set("agent_id", agentID)
	}
	return c.URL("/api/notion/oauth/authorize", query)
}

// GoogleSheetsAuthorizeURL is where the browser starts the Google OAuth flow.
func GoogleSheetsAuthorizeURL(c Client, workspaceID, agentID string) string {
	query := url.Values{"workspace_id": {workspaceID}}
	if agentID != "" {
		query.Set("agent_id", agentID)
	}
	return c.URL("/api/google-sheets/oauth/authorize", query)
}

package models

import (
	"strings"
)

// OAuthState is carried through third party OAuth flows as
// "workspaceId:agentId[:workspaceSlug]".
type OAuthState struct {
	WorkspaceID   string
	AgentID       string
	WorkspaceSlug string
}

// ParseOAuthState reports false when the workspace or agent part is missing.
func ParseOAuthState(state string) (OAuthState, bool) {
	parts := strings.Split(state, ":")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return OAuthState{}, false
	}
	s := OAuthState{
		WorkspaceID: parts[0],
		AgentID:     parts[1],
	}
	if len(parts) > 2 {
		s.WorkspaceSlug = parts[2]
	}
	return s, true
}

// ParseWorkspaceOAuthState is ParseOAuthState for workspace level providers,
// where the agent part may be empty ("workspaceId" or "workspaceId:").
func ParseWorkspaceOAuthState(state string) (OAuthState, bool) {
	workspaceID, rest, _ := strings.Cut(state, ":")
	if workspaceID == "" {
		return OAuthState{}, false
	}
	if rest == "" {
		return OAuthState{WorkspaceID: workspaceID}, true
	}
	return ParseOAuthState(state)
}

// OptionalAgentID is the agent id for redirect payloads, nil when unset.
func (s OAuthState) OptionalAgentID() *string {
	if s.AgentID == "" {
		return nil
	}
	return &s.AgentID
}

// SourcesPath is the dashboard page listing knowledge sources of provider,
// scoped to the agent when the state names one.
func (s OAuthState) SourcesPath(provider string) string {
	if s.AgentID == "" {
		return "/dashboard/" + s.WorkspaceID + "/sources/" + provider
	}
	return "/dashboard/" + s.WorkspaceID + "/agents/" + s.AgentID + "/sources/" + provider
}

type OAuthCallbackParams struct {
	Code             string `query:"code"`
	State            string `query:"state"`
	Error            string `query:"error"`
	ErrorDescription string `query:"error_description"`
}

// CallbackPage is the outcome of a popup OAuth flow, rendered as a page that
// notifies the opener window and falls back to a redirect.
type CallbackPage struct {
	Success     bool
	Message     string
	WorkspaceID string
	AgentID     string
	RedirectURL string
}

package models

type ZendeskConnectParams struct {
	WorkspaceID string `json:"workspaceId"`
	AgentID     string `json:"agentId"`
	Subdomain   string `json:"subdomain"`
}

type ZendeskDisconnectParams struct {
	WorkspaceID string `json:"workspaceId"`
	AgentID     string `json:"agentId"`
}

type ZendeskTicketParams struct {
	WorkspaceID    string   `json:"workspaceId"`
	AgentID        string   `json:"agentId"`
	Subject        string   `json:"subject"`
	CommentBody    string   `json:"commentBody"`
	RequesterEmail string   `json:"requesterEmail"`
	RequesterName  string   `json:"requesterName"`
	Tags           []string `json:"tags"`
}

type CalendlyConnectParams struct {
	WorkspaceID string `json:"workspaceId"`
	AgentID     string `json:"agentId"`
}

type CalendlyStatusParams struct {
	WorkspaceID string `query:"workspace_id"`
	AgentID     string `query:"agent_id"`
}

type CalendlySlotsParams struct {
	WorkspaceID  string `query:"workspace_id"`
	AgentID      string `query:"agent_id"`
	EventTypeURI string `query:"event_type_uri"`
	StartTime    string `query:"start_time"`
	EndTime      string `query:"end_time"`
}

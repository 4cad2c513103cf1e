package models

import (
	"time"
)

type Provider string

const (
	ProviderNotion       Provider = "notion"
	ProviderGoogleSheets Provider = "google_sheets"
	ProviderZendesk      Provider = "zendesk"
	ProviderWhatsApp     Provider = "whatsapp"
	ProviderZapier       Provider = "zapier"
)

// ConnectionID builds the document id of a connection. Workspace scoped
// providers ignore agentID.
func ConnectionID(provider Provider, workspaceID, agentID string, agentScoped bool) string {
	if !agentScoped {
		return workspaceID + "_" + string(provider)
	}
	return workspaceID + "_" + agentID + "_" + string(provider)
}

type BusinessAccount struct {
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}

// Connection holds the stored credential and settings of an integration.
// AccessToken and RefreshToken are encrypted before they reach storage and
// are never serialized to API responses.
type Connection struct {
	ID             string     `bson:"_id" json:"id"`
	Provider       Provider   `bson:"provider" json:"provider"`
	WorkspaceID    string     `bson:"workspaceId" json:"workspaceId"`
	AgentID        string     `bson:"agentId,omitempty" json:"agentId,omitempty"`
	AccessToken    string     `bson:"accessToken,omitempty" json:"-"`
	RefreshToken   string     `bson:"refreshToken,omitempty" json:"-"`
	TokenExpiresAt *time.Time `bson:"tokenExpiresAt,omitempty" json:"tokenExpiresAt,omitempty"`

	// zendesk
	Subdomain        string `bson:"subdomain,omitempty" json:"subdomain,omitempty"`
	AccountName      string `bson:"accountName,omitempty" json:"accountName,omitempty"`
	AccountEmail     string `bson:"accountEmail,omitempty" json:"accountEmail,omitempty"`
	ZendeskAgentID   string `bson:"zendeskAgentId,omitempty" json:"zendeskAgentId,omitempty"`
	ZendeskAgentName string `bson:"zendeskAgentName,omitempty" json:"zendeskAgentName,omitempty"`

	// notion
	NotionWorkspaceID   string         `bson:"notionWorkspaceId,omitempty" json:"notionWorkspaceId,omitempty"`
	NotionWorkspaceName string         `bson:"notionWorkspaceName,omitempty" json:"notionWorkspaceName,omitempty"`
	NotionWorkspaceIcon string         `bson:"notionWorkspaceIcon,omitempty" json:"notionWorkspaceIcon,omitempty"`
	BotID               string         `bson:"botId,omitempty" json:"botId,omitempty"`
	Owner               map[string]any `bson:"owner,omitempty" json:"owner,omitempty"`

	// whatsapp
	BusinessAccounts  []BusinessAccount `bson:"businessAccounts,omitempty" json:"businessAccounts,omitempty"`
	PhoneNumberID     string            `bson:"phoneNumberId,omitempty" json:"phoneNumberId,omitempty"`
	PhoneNumber       string            `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	BusinessAccountID string            `bson:"businessAccountId,omitempty" json:"businessAccountId,omitempty"`

	// zapier
	ZapierAgentID   string `bson:"zapierAgentId,omitempty" json:"zapierAgentId,omitempty"`
	ZapierAgentName string `bson:"zapierAgentName,omitempty" json:"zapierAgentName,omitempty"`
	WebhookURL      string `bson:"webhookUrl,omitempty" json:"webhookUrl,omitempty"`

	AutoAssignEnabled bool   `bson:"autoAssignEnabled,omitempty" json:"autoAssignEnabled,omitempty"`
	AutoReplyEnabled  bool   `bson:"autoReplyEnabled,omitempty" json:"autoReplyEnabled,omitempty"`
	BaseInstructions  string `bson:"baseInstructions,omitempty" json:"baseInstructions,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IntegrationSettings are the user editable fields of a connection.
type IntegrationSettings struct {
	ZendeskAgentID    *string `json:"zendeskAgentId"`
	ZendeskAgentName  *string `json:"zendeskAgentName"`
	ZapierAgentID     *string `json:"zapierAgentId"`
	ZapierAgentName   *string `json:"zapierAgentName"`
	WebhookURL        *string `json:"webhookUrl" validate:"omitempty,url"`
	PhoneNumberID     *string `json:"phoneNumberId"`
	PhoneNumber       *string `json:"phoneNumber"`
	BusinessAccountID *string `json:"businessAccountId"`
	AutoAssignEnabled *bool   `json:"autoAssignEnabled"`
	AutoReplyEnabled  *bool   `json:"autoReplyEnabled"`
	BaseInstructions  *string `json:"baseInstructions"`
}

type ConnectionStatus struct {
	Provider   Provider    `json:"provider"`
	Connected  bool        `json:"connected"`
	Configured bool        `json:"configured"`
	Connection *Connection `json:"connection,omitempty"`
}

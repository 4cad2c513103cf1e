package models

// Email is a rendered message ready to hand to the provider.
type Email struct {
	Subject string
	From    Recipient
	To      []Recipient
	HTML    string
	Text    string
}

type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SendEmailResult struct {
	MessageID string `json:"messageId"`
}

type EmailType string

const (
	EmailKnowledgeBaseProcessed EmailType = "knowledge-base-processed"
	EmailArticle                EmailType = "article"
	EmailMessageNotification    EmailType = "message-notification"
	EmailAgentDeployed          EmailType = "agent-deployed"
	EmailWelcome                EmailType = "welcome"
	EmailInvite                 EmailType = "invite"
	EmailLeadCollected          EmailType = "lead-collected"
	EmailWorkspaceCreated       EmailType = "workspace-created"
	EmailPasswordReset          EmailType = "password-reset"
)

const (
	NotificationTypeBusiness = "business"
	NotificationTypeCustomer = "customer"
)

type KnowledgeBaseProcessedEmail struct {
	Email        string `json:"email" validate:"required,email_format"`
	UserName     string `json:"userName" validate:"required"`
	ArticleTitle string `json:"articleTitle" validate:"required"`
	ArticleType  string `json:"articleType" validate:"required"`
	ChunksCount  *int   `json:"chunksCount"`
	AgentID      string `json:"agentId"`
	WorkspaceID  string `json:"workspaceId"`
}

type ArticleEmail struct {
	Email        string `json:"email" validate:"required,email_format"`
	ArticleTitle string `json:"articleTitle" validate:"required"`
	ArticleType  string `json:"articleType" validate:"required"`
	UserName     string `json:"userName"`
	WidgetName   string `json:"widgetName"`
	ChunksCount  *int   `json:"chunksCount"`
}

type MessageNotificationEmail struct {
	Type           string `json:"type" validate:"required,oneof=customer business"`
	RecipientEmail string `json:"recipientEmail" validate:"required,email_format"`
	RecipientName  string `json:"recipientName"`
	SenderName     string `json:"senderName"`
	MessageText    string `json:"messageText" validate:"required"`
	ConversationID string `json:"conversationId" validate:"required"`
	WidgetName     string `json:"widgetName"`
	BusinessName   string `json:"businessName"`
}

type AgentDeployedEmail struct {
	Email       string `json:"email" validate:"required,email_format"`
	UserName    string `json:"userName" validate:"required"`
	AgentName   string `json:"agentName" validate:"required"`
	AgentID     string `json:"agentId" validate:"required"`
	WorkspaceID string `json:"workspaceId" validate:"required"`
}

type WelcomeEmail struct {
	Email string `json:"email" validate:"required,email_format"`
	Name  string `json:"name" validate:"required"`
}

// MissingFieldsMessage overrides the generic validation message.
func (WelcomeEmail) MissingFieldsMessage() string {
	return "Email and name are required"
}

type InviteEmail struct {
	Email       string `json:"email" validate:"required,email_format"`
	CompanyName string `json:"companyName" validate:"required"`
	InviterName string `json:"inviterName" validate:"required"`
	InviteToken string `json:"inviteToken" validate:"required"`
	Role        string `json:"role"`
}

type LeadCollectedEmail struct {
	Email       string         `json:"email" validate:"required,email_format"`
	UserName    string         `json:"userName" validate:"required"`
	LeadName    string         `json:"leadName" validate:"required"`
	LeadEmail   string         `json:"leadEmail" validate:"required,email_format"`
	LeadData    map[string]any `json:"leadData"`
	AgentID     string         `json:"agentId"`
	WorkspaceID string         `json:"workspaceId"`
}

type WorkspaceCreatedEmail struct {
	Email         string `json:"email" validate:"required,email_format"`
	UserName      string `json:"userName" validate:"required"`
	WorkspaceName string `json:"workspaceName" validate:"required"`
	WorkspaceID   string `json:"workspaceId" validate:"required"`
}

type PasswordResetEmail struct {
	Email     string `json:"email" validate:"required,email_format"`
	ResetLink string `json:"resetLink" validate:"required"`
	UserName  string `json:"userName"`
}

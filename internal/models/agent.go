package models

import (
	"time"
)

type AgentStatus string

const (
	AgentStatusActive   AgentStatus = "active"
	AgentStatusInactive AgentStatus = "inactive"
	AgentStatusTraining AgentStatus = "training"
)

const DefaultSystemPrompt = "You are a helpful customer support assistant. Answer questions accurately and politely using the knowledge you have been given."

type Agent struct {
	ID          string         `bson:"_id" json:"id"`
	WorkspaceID string         `bson:"workspaceId" json:"workspaceId"`
	Name        string         `bson:"name" json:"name"`
	Description string         `bson:"description" json:"description"`
	Status      AgentStatus    `bson:"status" json:"status"`
	Settings    AgentSettings  `bson:"settings" json:"settings"`
	AIConfig    map[string]any `bson:"aiConfig,omitempty" json:"aiConfig,omitempty"`
	Stats       AgentStats     `bson:"stats" json:"stats"`
	CreatedBy   string         `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt   time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time      `bson:"updatedAt" json:"updatedAt"`
}

func (Agent) CollectionName() string { return "agents" }
func (a Agent) GetID() string        { return a.ID }

type AgentSettings struct {
	Model        string  `bson:"model" json:"model"`
	Temperature  float64 `bson:"temperature" json:"temperature"`
	MaxTokens    int     `bson:"maxTokens" json:"maxTokens"`
	SystemPrompt string  `bson:"systemPrompt" json:"systemPrompt"`
}

func DefaultAgentSettings() AgentSettings {
	return AgentSettings{
		Model:        "gpt-4o-mini",
		Temperature:  0.7,
		MaxTokens:    1000,
		SystemPrompt: DefaultSystemPrompt,
	}
}

type AgentStats struct {
	TotalConversations int        `bson:"totalConversations" json:"totalConversations"`
	TotalMessages      int        `bson:"totalMessages" json:"totalMessages"`
	LastActiveAt       *time.Time `bson:"lastActiveAt,omitempty" json:"lastActiveAt,omitempty"`
}

type AgentSettingsParams struct {
	Model        *string  `json:"model"`
	Temperature  *float64 `json:"temperature" validate:"omitempty,gte=0,lte=2"`
	MaxTokens    *int     `json:"maxTokens" validate:"omitempty,gt=0"`
	SystemPrompt *string  `json:"systemPrompt"`
}

type CreateAgentParams struct {
	Name        string               `json:"name" validate:"required"`
	Description string               `json:"description"`
	Settings    *AgentSettingsParams `json:"settings"`
}

type UpdateAgentParams struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Status      *AgentStatus         `json:"status" validate:"omitempty,oneof=active inactive training"`
	Settings    *AgentSettingsParams `json:"settings"`
	AIConfig    map[string]any       `json:"aiConfig"`
}

// Apply merges the non-nil fields of p into s.
func (p *AgentSettingsParams) Apply(s *AgentSettings) {
	if p == nil {
		return
	}
	if p.Model != nil {
		s.Model = *p.Model
	}
	if p.Temperature != nil {
		s.Temperature = *p.Temperature
	}
	if p.MaxTokens != nil {
		s.MaxTokens = *p.MaxTokens
	}
	if p.SystemPrompt != nil {
		s.SystemPrompt = *p.SystemPrompt
	}
}

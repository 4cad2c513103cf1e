package models

import (
	"time"

	"github.com/goccy/go-json"
)

type EventType string

const (
	EventWorkspaceCreated        EventType = "workspace.created"
	EventWorkspaceDeleted        EventType = "workspace.deleted"
	EventMemberAdded             EventType = "workspace.member.added"
	EventInviteCreated           EventType = "workspace.invite.created"
	EventAgentCreated            EventType = "agent.created"
	EventAgentDeleted            EventType = "agent.deleted"
	EventMessageCreated          EventType = "message.created"
	EventConnectionSaved         EventType = "connection.saved"
	EventConnectionDeleted       EventType = "connection.deleted"
	EventKnowledgeCreated        EventType = "knowledge.created"
	EventNotificationEmailSent   EventType = "notification.email.sent"
	EventNotificationEmailFailed EventType = "notification.email.failed"
)

type EventMeta struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	OccurredAt    time.Time `json:"occurredAt"`
	CorrelationID string    `json:"correlationId,omitempty"`
}

// Envelope is the wire format of every outbound domain event.
type Envelope struct {
	Meta EventMeta `json:"meta"`
	Data any       `json:"data"`
}

func NewEnvelope(typ EventType, correlationID string, data any) Envelope {
	return Envelope{
		Meta: EventMeta{
			ID:            NewToken(),
			Type:          typ,
			OccurredAt:    time.Now().UTC(),
			CorrelationID: correlationID,
		},
		Data: data,
	}
}

// BackendChatEvent is consumed from the backend chat events topic.
type BackendChatEvent struct {
	Pattern string          `json:"pattern"`
	Data    json.RawMessage `json:"data"`
}

type BackendMessageCreated struct {
	ConversationID string         `json:"conversationId" validate:"required"`
	Text           string         `json:"text" validate:"required"`
	Sender         Sender         `json:"sender" validate:"required,oneof=customer business"`
	SenderName     string         `json:"senderName"`
	Metadata       map[string]any `json:"metadata"`
}

type NotificationEvent struct {
	MessageID      string `json:"messageId"`
	ConversationID string `json:"conversationId"`
	Recipient      string `json:"recipient"`
	Type           string `json:"type"`
	MessageRefID   string `json:"messageRefId,omitempty"`
	Error          string `json:"error,omitempty"`
}

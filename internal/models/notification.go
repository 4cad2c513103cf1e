package models

import "time"

// NotificationJob is a pending message notification re-checked once it is due.
type NotificationJob struct {
	MessageID      string    `json:"messageId"`
	ConversationID string    `json:"conversationId"`
	Sender         Sender    `json:"sender"`
	DueAt          time.Time `json:"dueAt"`
	Attempts       int       `json:"attempts,omitempty"`
}

type MessageNotificationParams struct {
	MessageID      string
	ConversationID string
	Sender         Sender
	SenderName     string
	Text           string
}

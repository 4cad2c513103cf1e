package models

import (
	"time"
)

type Sender string

const (
	SenderCustomer Sender = "customer"
	SenderBusiness Sender = "business"
)

func (s Sender) Valid() bool {
	return s == SenderCustomer || s == SenderBusiness
}

// Other returns the opposite side of the conversation.
func (s Sender) Other() Sender {
	if s == SenderCustomer {
		return SenderBusiness
	}
	return SenderCustomer
}

type ConversationStatus string

const (
	ConversationStatusActive   ConversationStatus = "active"
	ConversationStatusClosed   ConversationStatus = "closed"
	ConversationStatusPending  ConversationStatus = "pending"
	ConversationStatusResolved ConversationStatus = "resolved"
	ConversationStatusUnsolved ConversationStatus = "unsolved"
	ConversationStatusCustom   ConversationStatus = "custom"
)

type HandoverMethod string

const (
	HandoverMethodButton     HandoverMethod = "button"
	HandoverMethodKeyword    HandoverMethod = "keyword"
	HandoverMethodQuickReply HandoverMethod = "quick_reply"
	HandoverMethodManual     HandoverMethod = "manual"
)

type HandoverMode string

const (
	HandoverModeAI    HandoverMode = "ai"
	HandoverModeHuman HandoverMode = "human"
)

type ChatWidget struct {
	ID                   string               `bson:"_id" json:"id"`
	BusinessID           string               `bson:"businessId" json:"businessId"`
	Name                 string               `bson:"name" json:"name"`
	WelcomeMessage       string               `bson:"welcomeMessage" json:"welcomeMessage"`
	PrimaryColor         string               `bson:"primaryColor" json:"primaryColor"`
	SecondaryColor       string               `bson:"secondaryColor,omitempty" json:"secondaryColor,omitempty"`
	Position             string               `bson:"position" json:"position"`
	ButtonText           string               `bson:"buttonText" json:"buttonText"`
	PlaceholderText      string               `bson:"placeholderText" json:"placeholderText"`
	OfflineMessage       string               `bson:"offlineMessage" json:"offlineMessage"`
	CollectEmail         bool                 `bson:"collectEmail" json:"collectEmail"`
	CollectPhone         bool                 `bson:"collectPhone" json:"collectPhone"`
	AutoReply            string               `bson:"autoReply" json:"autoReply"`
	WidgetIcon           string               `bson:"widgetIcon,omitempty" json:"widgetIcon,omitempty"`
	LogoURL              string               `bson:"logoUrl,omitempty" json:"logoUrl,omitempty"`
	EnableDataCollection bool                 `bson:"enableDataCollection,omitempty" json:"enableDataCollection,omitempty"`
	DataCollectionFields map[string]DataField `bson:"dataCollectionFields,omitempty" json:"dataCollectionFields,omitempty"`
	WidgetSize           string               `bson:"widgetSize,omitempty" json:"widgetSize,omitempty"`
	ButtonStyle          string               `bson:"buttonStyle,omitempty" json:"buttonStyle,omitempty"`
	ButtonIcon           string               `bson:"buttonIcon,omitempty" json:"buttonIcon,omitempty"`
	ButtonSize           string               `bson:"buttonSize,omitempty" json:"buttonSize,omitempty"`
	ButtonAnimation      string               `bson:"buttonAnimation,omitempty" json:"buttonAnimation,omitempty"`
	ShowButtonText       bool                 `bson:"showButtonText,omitempty" json:"showButtonText,omitempty"`
	BusinessHours        BusinessHours        `bson:"businessHours" json:"businessHours"`
	AIConfig             map[string]any       `bson:"aiConfig,omitempty" json:"aiConfig,omitempty"`
	NotificationEmail    string               `bson:"notificationEmail,omitempty" json:"notificationEmail,omitempty"`
	IsActive             bool                 `bson:"isActive" json:"isActive"`
	CreatedAt            time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (ChatWidget) CollectionName() string { return "chatWidgets" }
func (w ChatWidget) GetID() string        { return w.ID }

type DataField struct {
	Enabled  bool   `bson:"enabled" json:"enabled"`
	Required bool   `bson:"required" json:"required"`
	Label    string `bson:"label" json:"label"`
}

type DayHours struct {
	Start   string `bson:"start" json:"start"`
	End     string `bson:"end" json:"end"`
	Enabled bool   `bson:"enabled" json:"enabled"`
}

type BusinessHours struct {
	Enabled   bool     `bson:"enabled" json:"enabled"`
	Timezone  string   `bson:"timezone" json:"timezone"`
	Monday    DayHours `bson:"monday" json:"monday"`
	Tuesday   DayHours `bson:"tuesday" json:"tuesday"`
	Wednesday DayHours `bson:"wednesday" json:"wednesday"`
	Thursday  DayHours `bson:"thursday" json:"thursday"`
	Friday    DayHours `bson:"friday" json:"friday"`
	Saturday  DayHours `bson:"saturday" json:"saturday"`
	Sunday    DayHours `bson:"sunday" json:"sunday"`
}

// PublicWidget is the subset of widget configuration served to embed scripts.
type PublicWidget struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	WelcomeMessage  string        `json:"welcomeMessage"`
	PrimaryColor    string        `json:"primaryColor"`
	Position        string        `json:"position"`
	ButtonText      string        `json:"buttonText"`
	PlaceholderText string        `json:"placeholderText"`
	OfflineMessage  string        `json:"offlineMessage"`
	CollectEmail    bool          `json:"collectEmail"`
	CollectPhone    bool          `json:"collectPhone"`
	AutoReply       string        `json:"autoReply"`
	BusinessHours   BusinessHours `json:"businessHours"`
	IsActive        bool          `json:"isActive"`
}

func (w ChatWidget) Public() PublicWidget {
	return PublicWidget{
		ID:              w.ID,
		Name:            w.Name,
		WelcomeMessage:  w.WelcomeMessage,
		PrimaryColor:    w.PrimaryColor,
		Position:        w.Position,
		ButtonText:      w.ButtonText,
		PlaceholderText: w.PlaceholderText,
		OfflineMessage:  w.OfflineMessage,
		CollectEmail:    w.CollectEmail,
		CollectPhone:    w.CollectPhone,
		AutoReply:       w.AutoReply,
		BusinessHours:   w.BusinessHours,
		IsActive:        w.IsActive,
	}
}

// WidgetParams is the editable widget configuration.
type WidgetParams struct {
	Name                 string               `json:"name" validate:"required"`
	WelcomeMessage       string               `json:"welcomeMessage"`
	PrimaryColor         string               `json:"primaryColor"`
	SecondaryColor       string               `json:"secondaryColor"`
	Position             string               `json:"position" validate:"omitempty,oneof=bottom-right bottom-left top-right top-left"`
	ButtonText           string               `json:"buttonText"`
	PlaceholderText      string               `json:"placeholderText"`
	OfflineMessage       string               `json:"offlineMessage"`
	CollectEmail         bool                 `json:"collectEmail"`
	CollectPhone         bool                 `json:"collectPhone"`
	AutoReply            string               `json:"autoReply"`
	WidgetIcon           string               `json:"widgetIcon"`
	LogoURL              string               `json:"logoUrl"`
	EnableDataCollection bool                 `json:"enableDataCollection"`
	DataCollectionFields map[string]DataField `json:"dataCollectionFields"`
	WidgetSize           string               `json:"widgetSize"`
	ButtonStyle          string               `json:"buttonStyle"`
	ButtonIcon           string               `json:"buttonIcon"`
	ButtonSize           string               `json:"buttonSize"`
	ButtonAnimation      string               `json:"buttonAnimation"`
	ShowButtonText       bool                 `json:"showButtonText"`
	BusinessHours        BusinessHours        `json:"businessHours"`
	AIConfig             map[string]any       `json:"aiConfig"`
	NotificationEmail    string               `json:"notificationEmail" validate:"omitempty,email"`
	IsActive             *bool                `json:"isActive"`
}

// ApplyTo copies the configuration onto w.
func (p WidgetParams) ApplyTo(w *ChatWidget) {
	w.Name = p.Name
	w.WelcomeMessage = p.WelcomeMessage
	w.PrimaryColor = p.PrimaryColor
	w.SecondaryColor = p.SecondaryColor
	w.Position = p.Position
	w.ButtonText = p.ButtonText
	w.PlaceholderText = p.PlaceholderText
	w.OfflineMessage = p.OfflineMessage
	w.CollectEmail = p.CollectEmail
	w.CollectPhone = p.CollectPhone
	w.AutoReply = p.AutoReply
	w.WidgetIcon = p.WidgetIcon
	w.LogoURL = p.LogoURL
	w.EnableDataCollection = p.EnableDataCollection
	w.DataCollectionFields = p.DataCollectionFields
	w.WidgetSize = p.WidgetSize
	w.ButtonStyle = p.ButtonStyle
	w.ButtonIcon = p.ButtonIcon
	w.ButtonSize = p.ButtonSize
	w.ButtonAnimation = p.ButtonAnimation
	w.ShowButtonText = p.ShowButtonText
	w.BusinessHours = p.BusinessHours
	w.AIConfig = p.AIConfig
	w.NotificationEmail = p.NotificationEmail
	if p.IsActive != nil {
		w.IsActive = *p.IsActive
	}
	if w.Position == "" {
		w.Position = "bottom-right"
	}
}

type ChatConversation struct {
	ID                  string             `bson:"_id" json:"id"`
	BusinessID          string             `bson:"businessId" json:"businessId"`
	WidgetID            string             `bson:"widgetId" json:"widgetId"`
	CustomerName        string             `bson:"customerName" json:"customerName"`
	CustomerEmail       string             `bson:"customerEmail" json:"customerEmail"`
	Status              ConversationStatus `bson:"status" json:"status"`
	CustomStatus        string             `bson:"customStatus,omitempty" json:"customStatus,omitempty"`
	LastMessage         string             `bson:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	LastMessageAt       *time.Time         `bson:"lastMessageAt,omitempty" json:"lastMessageAt,omitempty"`
	UnreadCount         int                `bson:"unreadCount" json:"unreadCount"`
	CustomerOnline      bool               `bson:"customerOnline" json:"customerOnline"`
	BusinessOnline      bool               `bson:"businessOnline" json:"businessOnline"`
	HandoverRequested   bool               `bson:"handoverRequested" json:"handoverRequested"`
	HandoverRequestedAt *time.Time         `bson:"handoverRequestedAt,omitempty" json:"handoverRequestedAt,omitempty"`
	HandoverMethod      HandoverMethod     `bson:"handoverMethod,omitempty" json:"handoverMethod,omitempty"`
	HandoverMode        HandoverMode       `bson:"handoverMode,omitempty" json:"handoverMode,omitempty"`
	HandoverTakenAt     *time.Time         `bson:"handoverTakenAt,omitempty" json:"handoverTakenAt,omitempty"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (ChatConversation) CollectionName() string { return "chatConversations" }
func (c ChatConversation) GetID() string        { return c.ID }

// RecipientOnline reports whether the side receiving a message from sender is online.
func (c ChatConversation) RecipientOnline(sender Sender) bool {
	if sender == SenderCustomer {
		return c.BusinessOnline
	}
	return c.CustomerOnline
}

type ChatMessage struct {
	ID                      string         `bson:"_id" json:"id"`
	ConversationID          string         `bson:"conversationId" json:"conversationId"`
	Text                    string         `bson:"text" json:"text"`
	Sender                  Sender         `bson:"sender" json:"sender"`
	SenderName              string         `bson:"senderName" json:"senderName"`
	ReadAt                  *time.Time     `bson:"readAt,omitempty" json:"readAt,omitempty"`
	Metadata                map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
	EmailNotificationSent   bool           `bson:"emailNotificationSent" json:"emailNotificationSent"`
	EmailNotificationSentAt *time.Time     `bson:"emailNotificationSentAt,omitempty" json:"emailNotificationSentAt,omitempty"`
	CreatedAt               time.Time      `bson:"createdAt" json:"createdAt"`
}

func (ChatMessage) CollectionName() string { return "chatMessages" }
func (m ChatMessage) GetID() string        { return m.ID }

type CreateConversationParams struct {
	CustomerName  string `json:"customerName" validate:"required"`
	CustomerEmail string `json:"customerEmail" validate:"omitempty,email"`
}

type SendMessageParams struct {
	ConversationID string         `json:"-"`
	Text           string         `json:"text" validate:"required"`
	Sender         Sender         `json:"sender" validate:"required,oneof=customer business"`
	SenderName     string         `json:"senderName"`
	Metadata       map[string]any `json:"metadata"`
}

type UpdateConversationStatusParams struct {
	Status       ConversationStatus `json:"status" validate:"required,oneof=active closed pending resolved unsolved custom"`
	CustomStatus string             `json:"customStatus" validate:"required_if=Status custom"`
}

type HandoverParams struct {
	Method HandoverMethod `json:"method" validate:"required,oneof=button keyword quick_reply manual"`
}

type PresenceParams struct {
	Side   Sender `json:"side" validate:"required,oneof=customer business"`
	Online bool   `json:"online"`
}

type MarkReadParams struct {
	Reader Sender `json:"reader" validate:"required,oneof=customer business"`
}

// ConversationRef addresses a conversation through the workspace or the widget
// it belongs to. A ref with neither set is unscoped and used by internal callers.
type ConversationRef struct {
	ID          string
	WorkspaceID string
	WidgetID    string
}

func (r ConversationRef) Matches(c *ChatConversation) bool {
	if r.WorkspaceID != "" && c.BusinessID != r.WorkspaceID {
		return false
	}
	if r.WidgetID != "" && c.WidgetID != r.WidgetID {
		return false
	}
	return true
}

type ListConversationsParams struct {
	Limit int64 `query:"limit" validate:"omitempty,gte=1,lte=100"`
	Skip  int64 `query:"skip" validate:"omitempty,gte=0"`
}

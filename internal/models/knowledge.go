package models

import (
	"fmt"
	"time"
)

type KnowledgeType string

const (
	KnowledgeTypeText         KnowledgeType = "text"
	KnowledgeTypePDF          KnowledgeType = "pdf"
	KnowledgeTypeFAQ          KnowledgeType = "faq"
	KnowledgeTypeWebsite      KnowledgeType = "website"
	KnowledgeTypeNotion       KnowledgeType = "notion"
	KnowledgeTypeGoogleSheets KnowledgeType = "google_sheets"
)

// KnowledgeBaseItem is a knowledge article attached to a chat widget.
type KnowledgeBaseItem struct {
	ID         string        `bson:"_id" json:"id"`
	BusinessID string        `bson:"businessId" json:"businessId"`
	WidgetID   string        `bson:"widgetId" json:"widgetId"`
	Title      string        `bson:"title" json:"title"`
	Content    string        `bson:"content" json:"content"`
	Type       KnowledgeType `bson:"type" json:"type"`
	FileName   string        `bson:"fileName,omitempty" json:"fileName,omitempty"`
	FileURL    string        `bson:"fileUrl,omitempty" json:"fileUrl,omitempty"`
	FileSize   int64         `bson:"fileSize,omitempty" json:"fileSize,omitempty"`
	WebsiteURL string        `bson:"websiteUrl,omitempty" json:"websiteUrl,omitempty"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt" json:"updatedAt"`
}

func (KnowledgeBaseItem) CollectionName() string { return "knowledgeBase" }
func (k KnowledgeBaseItem) GetID() string        { return k.ID }

type CreateKnowledgeBaseItemParams struct {
	Title          string        `json:"title" validate:"required"`
	Content        string        `json:"content"`
	Type           KnowledgeType `json:"type" validate:"required,oneof=text pdf website"`
	FileName       string        `json:"fileName"`
	FileURL        string        `json:"fileUrl" validate:"required_if=Type pdf"`
	FileSize       int64         `json:"fileSize"`
	WebsiteURL     string        `json:"websiteUrl" validate:"required_if=Type website"`
	EmbeddingModel string        `json:"embeddingModel"`
}

// AgentKnowledgeItem is a knowledge source attached to an agent.
type AgentKnowledgeItem struct {
	ID                string        `bson:"_id" json:"id"`
	AgentID           string        `bson:"agentId" json:"agentId"`
	WorkspaceID       string        `bson:"workspaceId" json:"workspaceId"`
	WidgetID          string        `bson:"widgetId,omitempty" json:"widgetId,omitempty"`
	Title             string        `bson:"title" json:"title"`
	Content           string        `bson:"content" json:"content"`
	Type              KnowledgeType `bson:"type" json:"type"`
	FileName          string        `bson:"fileName,omitempty" json:"fileName,omitempty"`
	FileURL           string        `bson:"fileUrl,omitempty" json:"fileUrl,omitempty"`
	FileSize          int64         `bson:"fileSize,omitempty" json:"fileSize,omitempty"`
	WebsiteURL        string        `bson:"websiteUrl,omitempty" json:"websiteUrl,omitempty"`
	FAQQuestion       string        `bson:"faqQuestion,omitempty" json:"faqQuestion,omitempty"`
	FAQAnswer         string        `bson:"faqAnswer,omitempty" json:"faqAnswer,omitempty"`
	BackendID         string        `bson:"backendId,omitempty" json:"backendId,omitempty"`
	NotionPageID      string        `bson:"notionPageId,omitempty" json:"notionPageId,omitempty"`
	NotionURL         string        `bson:"notionUrl,omitempty" json:"notionUrl,omitempty"`
	GoogleSheetID     string        `bson:"googleSheetId,omitempty" json:"googleSheetId,omitempty"`
	SheetName         string        `bson:"sheetName,omitempty" json:"sheetName,omitempty"`
	RowsCount         int           `bson:"rowsCount,omitempty" json:"rowsCount,omitempty"`
	ChunksCreated     int           `bson:"chunksCreated,omitempty" json:"chunksCreated,omitempty"`
	EmbeddingProvider string        `bson:"embeddingProvider,omitempty" json:"embeddingProvider,omitempty"`
	EmbeddingModel    string        `bson:"embeddingModel,omitempty" json:"embeddingModel,omitempty"`
	CreatedAt         time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time     `bson:"updatedAt" json:"updatedAt"`
}

func (AgentKnowledgeItem) CollectionName() string { return "agentKnowledge" }
func (k AgentKnowledgeItem) GetID() string        { return k.ID }

type CreateAgentKnowledgeParams struct {
	WidgetID          string        `json:"widgetId"`
	Title             string        `json:"title" validate:"required"`
	Content           string        `json:"content"`
	Type              KnowledgeType `json:"type" validate:"required,oneof=text pdf faq website"`
	FileName          string        `json:"fileName"`
	FileURL           string        `json:"fileUrl"`
	FileSize          int64         `json:"fileSize"`
	WebsiteURL        string        `json:"websiteUrl" validate:"required_if=Type website"`
	FAQQuestion       string        `json:"faqQuestion" validate:"required_if=Type faq"`
	FAQAnswer         string        `json:"faqAnswer" validate:"required_if=Type faq"`
	EmbeddingProvider string        `json:"embeddingProvider"`
	EmbeddingModel    string        `json:"embeddingModel"`
}

// FAQContent is the stored content of an FAQ knowledge item.
func FAQContent(question, answer string) string {
	return fmt.Sprintf("Q: %s\n\nA: %s", question, answer)
}

type ImportNotionParams struct {
	PageID            string `json:"pageId"`
	DatabaseID        string `json:"databaseId"`
	Title             string `json:"title" validate:"required"`
	URL               string `json:"url"`
	EmbeddingProvider string `json:"embeddingProvider"`
	EmbeddingModel    string `json:"embeddingModel"`
}

type ImportSheetParams struct {
	SpreadsheetID     string `json:"spreadsheetId" validate:"required"`
	SheetName         string `json:"sheetName"`
	Title             string `json:"title" validate:"required"`
	EmbeddingProvider string `json:"embeddingProvider"`
	EmbeddingModel    string `json:"embeddingModel"`
}

package backend

import (
	"context"
	"net/http"
	"net/url"
)

type NotionPage struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	URL            string `json:"url"`
	CreatedTime    string `json:"created_time"`
	LastEditedTime string `json:"last_edited_time"`
}

type NotionImportRequest struct {
	APIKey            string         `json:"api_key"`
	PageID            string         `json:"page_id,omitempty"`
	DatabaseID        string         `json:"database_id,omitempty"`
	WidgetID          string         `json:"widget_id"`
	Title             string         `json:"title,omitempty"`
	EmbeddingProvider string         `json:"embedding_provider"`
	EmbeddingModel    string         `json:"embedding_model"`
	Metadata          map[string]any `json:"metadata"`
}

type Spreadsheet struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	ModifiedTime string `json:"modifiedTime"`
}

type SpreadsheetList struct {
	Spreadsheets []Spreadsheet `json:"spreadsheets"`
	Total        int           `json:"total"`
}

type SheetImportRequest struct {
	AccessToken       string         `json:"access_token"`
	SpreadsheetID     string         `json:"spreadsheet_id"`
	SheetName         string         `json:"sheet_name,omitempty"`
	AgentID           string         `json:"agent_id"`
	Title             string         `json:"title"`
	EmbeddingProvider string         `json:"embedding_provider"`
	EmbeddingModel    string         `json:"embedding_model"`
	Metadata          map[string]any `json:"metadata"`
}

type ImportResponse struct {
	Success       bool   `json:"success"`
	ID            string `json:"id,omitempty"`
	Title         string `json:"title,omitempty"`
	Message       string `json:"message,omitempty"`
	ChunksCreated int    `json:"chunks_created,omitempty"`
	RowsCount     int    `json:"rows_count,omitempty"`
	Content       string `json:"content,omitempty"`
	URL           string `json:"url,omitempty"`
}

type StoreKnowledgeRequest struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId,omitempty"`
	BusinessID  string `json:"businessId,omitempty"`
	AgentID     string `json:"agentId,omitempty"`
	WidgetID    string `json:"widgetId,omitempty"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Type        string `json:"type"`
	FileName    string `json:"fileName,omitempty"`
	FileURL     string `json:"fileUrl,omitempty"`
	FileSize    int64  `json:"fileSize,omitempty"`
	WebsiteURL  string `json:"websiteUrl,omitempty"`
	FAQQuestion string `json:"faqQuestion,omitempty"`
	FAQAnswer   string `json:"faqAnswer,omitempty"`
}

type StoreKnowledgeResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	QdrantID string `json:"qdrantId,omitempty"`
}

type StoreFAQRequest struct {
	AgentID           string         `json:"agent_id"`
	WidgetID          string         `json:"widget_id,omitempty"`
	Title             string         `json:"title"`
	Question          string         `json:"question"`
	Answer            string         `json:"answer"`
	Type              string         `json:"type"`
	EmbeddingProvider string         `json:"embedding_provider"`
	EmbeddingModel    string         `json:"embedding_model"`
	Metadata          map[string]any `json:"metadata"`
}

func (c *client) NotionSearchPages(ctx context.Context, apiKey, query string) ([]NotionPage, error) {
	var out struct {
		Pages []NotionPage `json:"pages"`
	}
	err := c.Do(ctx, Request{
		Method:       http.MethodPost,
		Path:         "/api/notion/search-pages",
		Body:         map[string]string{"api_key": apiKey, "query": query},
		DefaultError: "Failed to search pages",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Pages == nil {
		out.Pages = []NotionPage{}
	}
	return out.Pages, nil
}

func (c *client) NotionImportPage(ctx context.Context, req NotionImportRequest) (*ImportResponse, error) {
	var out ImportResponse
	err := c.Do(ctx, Request{
		Method:       http.MethodPost,
		Path:         "/api/notion/import-page",
		Body:         req,
		DefaultError: "Failed to import page",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) NotionImportDatabase(ctx context.Context, req NotionImportRequest) (*ImportResponse, error) {
	var out ImportResponse
	err := c.Do(ctx, Request{
		Method:       http.MethodPost,
		Path:         "/api/notion/import-database",
		Body:         req,
		DefaultError: "Failed to import database",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) ListSpreadsheets(ctx context.Context, accessToken, query string) (*SpreadsheetList, error) {
	var out SpreadsheetList
	err := c.Do(ctx, Request{
		Method:       http.MethodPost,
		Path:         "/api/google-sheets/list-spreadsheets",
		Body:         map[string]string{"access_token": accessToken, "query": query},
		DefaultError: "Failed to list spreadsheets",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Spreadsheets == nil {
		out.Spreadsheets = []Spreadsheet{}
	}
	return &out, nil
}

func (c *client) ImportSheet(ctx context.Context, req SheetImportRequest) (*ImportResponse, error) {
	var out ImportResponse
	err := c.Do(ctx, Request{
		Method:       http.MethodPost,
		Path:         "/api/google-sheets/import-sheet",
		Body:         req,
		DefaultError: "Failed to import sheet",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) StoreKnowledge(ctx context.Context, embeddingModel string, req StoreKnowledgeRequest) (*StoreKnowledgeResponse, error) {
	var out StoreKnowledgeResponse
	err := c.Do(ctx, Request{
		Method:       http.MethodPost,
		Path:         "/api/knowledge-base/store",
		Query:        url.Values{"embedding_model": {embeddingModel}},
		Body:         req,
		DefaultError: "Failed to store knowledge item",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) StoreFAQ(ctx context.Context, req StoreFAQRequest) error {
	return c.Do(ctx, Request{
		Method:       http.MethodPost,
		Path:         "/api/knowledge-base/store-faq",
		Body:         req,
		DefaultError: "Failed to store FAQ",
	}, nil)
}

func (c *client) DeleteKnowledge(ctx context.Context, id string) error {
	return c.Do(ctx, Request{
		Method:       http.MethodDelete,
		Path:         "/api/knowledge-base/delete/" + url.PathEscape(id),
		DefaultError: "Failed to delete knowledge item",
	}, nil)
}

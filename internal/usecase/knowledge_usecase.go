package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/internal/repo/backend"
	"github.com/ragzy-ai/ragzy-api/internal/repo/events"
	"github.com/ragzy-ai/ragzy-api/internal/repo/mongodb"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
	"github.com/ragzy-ai/ragzy-api/pkg/util"
)

var (
	ErrKnowledgeNotFound   = models.NewError(http.StatusNotFound, "Knowledge item not found")
	ErrNotionSourceMissing = models.NewError(http.StatusBadRequest, "pageId or databaseId is required")
	ErrNotionNotConnected  = models.NewError(http.StatusBadRequest, "Notion is not connected")
	ErrSheetsNotConnected  = models.NewError(http.StatusBadRequest, "Google Sheets is not connected")
)

// KnowledgeBackend is the part of the backend that indexes knowledge.
type KnowledgeBackend interface {
	StoreKnowledge(ctx context.Context, embeddingModel string, req backend.StoreKnowledgeRequest) (*backend.StoreKnowledgeResponse, error)
	StoreFAQ(ctx context.Context, req backend.StoreFAQRequest) error
	DeleteKnowledge(ctx context.Context, id string) error
	NotionSearchPages(ctx context.Context, apiKey, query string) ([]backend.NotionPage, error)
	NotionImportPage(ctx context.Context, req backend.NotionImportRequest) (*backend.ImportResponse, error)
	NotionImportDatabase(ctx context.Context, req backend.NotionImportRequest) (*backend.ImportResponse, error)
	ListSpreadsheets(ctx context.Context, accessToken, query string) (*backend.SpreadsheetList, error)
	ImportSheet(ctx context.Context, req backend.SheetImportRequest) (*backend.ImportResponse, error)
}

type WidgetGetter interface {
	GetWidget(ctx context.Context, workspaceID, id string) (*models.ChatWidget, error)
}

type AgentGetter interface {
	Get(ctx context.Context, workspaceID, id string) (*models.Agent, error)
}

// TokenSource returns the decrypted access token of a stored connection.
type TokenSource interface {
	AccessToken(ctx context.Context, provider models.Provider, workspaceID, agentID string) (string, error)
}

type KnowledgeUseCase struct {
	knowledgeBaseRepo  mongodb.KnowledgeBaseRepository
	agentKnowledgeRepo mongodb.AgentKnowledgeRepository
	widgets            WidgetGetter
	agents             AgentGetter
	backend            KnowledgeBackend
	tokens             TokenSource
	publisher          events.Publisher
	embeddingProvider  string
	embeddingModel     string
	now                func() time.Time
}

func NewKnowledgeUseCase(
	conf *config.Config,
	knowledgeBaseRepo mongodb.KnowledgeBaseRepository,
	agentKnowledgeRepo mongodb.AgentKnowledgeRepository,
	widgets WidgetGetter,
	agents AgentGetter,
	backend KnowledgeBackend,
	tokens TokenSource,
	publisher events.Publisher,
) *KnowledgeUseCase {
	return &KnowledgeUseCase{
		knowledgeBaseRepo:  knowledgeBaseRepo,
		agentKnowledgeRepo: agentKnowledgeRepo,
		widgets:            widgets,
		agents:             agents,
		backend:            backend,
		tokens:             tokens,
		publisher:          publisher,
		embeddingProvider:  conf.Embedding.Provider,
		embeddingModel:     conf.Embedding.Model,
		now:                time.Now,
	}
}

func (uc *KnowledgeUseCase) CreateKnowledgeBaseItem(ctx context.Context, workspaceID, widgetID string, params models.CreateKnowledgeBaseItemParams) (*models.KnowledgeBaseItem, error) {
	if _, err := uc.widgets.GetWidget(ctx, workspaceID, widgetID); err != nil {
		return nil, err
	}

	now := uc.now()
	item := &models.KnowledgeBaseItem{
		ID:         models.NewID(),
		BusinessID: workspaceID,
		WidgetID:   widgetID,
		Title:      params.Title,
		Content:    params.Content,
		Type:       params.Type,
		FileName:   params.FileName,
		FileURL:    params.FileURL,
		FileSize:   params.FileSize,
		WebsiteURL: params.WebsiteURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.knowledgeBaseRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create knowledge item: %w", err)
	}

	_, err := uc.backend.StoreKnowledge(ctx, util.FirstNonEmpty(params.EmbeddingModel, uc.embeddingModel), backend.StoreKnowledgeRequest{
		ID:         item.ID,
		BusinessID: item.BusinessID,
		WidgetID:   item.WidgetID,
		Title:      item.Title,
		Content:    item.Content,
		Type:       string(item.Type),
		FileName:   item.FileName,
		FileURL:    item.FileURL,
		FileSize:   item.FileSize,
		WebsiteURL: item.WebsiteURL,
	})
	if err != nil {
		log.Warnw(ctx, "failed to index knowledge item", "knowledge_id", item.ID, "error", err)
	}

	publishEvent(ctx, uc.publisher, models.EventKnowledgeCreated, workspaceID, item)
	return item, nil
}

func (uc *KnowledgeUseCase) ListKnowledgeBase(ctx context.Context, workspaceID, widgetID string) ([]models.KnowledgeBaseItem, error) {
	if _, err := uc.widgets.GetWidget(ctx, workspaceID, widgetID); err != nil {
		return nil, err
	}
	items, err := uc.knowledgeBaseRepo.ListByWidget(ctx, widgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge items: %w", err)
	}
	return items, nil
}

func (uc *KnowledgeUseCase) DeleteKnowledgeBaseItem(ctx context.Context, workspaceID, id string) error {
	item, err := uc.knowledgeBaseRepo.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return ErrKnowledgeNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get knowledge item: %w", err)
	}
	if item.BusinessID != workspaceID {
		return ErrKnowledgeNotFound
	}

	uc.unindex(ctx, id)
	if err := uc.knowledgeBaseRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete knowledge item: %w", err)
	}
	return nil
}

func (uc *KnowledgeUseCase) unindex(ctx context.Context, id string) {
	if err := uc.backend.DeleteKnowledge(ctx, id); err != nil {
		log.Warnw(ctx, "failed to delete knowledge from backend", "knowledge_id", id, "error", err)
	}
}

func (uc *KnowledgeUseCase) CreateAgentKnowledge(ctx context.Context, workspaceID, agentID string, params models.CreateAgentKnowledgeParams) (*models.AgentKnowledgeItem, error) {
	if _, err := uc.agents.Get(ctx, workspaceID, agentID); err != nil {
		return nil, err
	}

	now := uc.now()
	item := &models.AgentKnowledgeItem{
		ID:                models.NewID(),
		AgentID:           agentID,
		WorkspaceID:       workspaceID,
		WidgetID:          params.WidgetID,
		Title:             params.Title,
		Content:           params.Content,
		Type:              params.Type,
		FileName:          params.FileName,
		FileURL:           params.FileURL,
		FileSize:          params.FileSize,
		WebsiteURL:        params.WebsiteURL,
		EmbeddingProvider: util.FirstNonEmpty(params.EmbeddingProvider, uc.embeddingProvider),
		EmbeddingModel:    util.FirstNonEmpty(params.EmbeddingModel, uc.embeddingModel),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if params.Type == models.KnowledgeTypeFAQ {
		item.FAQQuestion = params.FAQQuestion
		item.FAQAnswer = params.FAQAnswer
		item.Content = models.FAQContent(params.FAQQuestion, params.FAQAnswer)
	}

	if err := uc.agentKnowledgeRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create agent knowledge: %w", err)
	}

	if err := uc.index(ctx, item); err != nil {
		log.Warnw(ctx, "failed to index agent knowledge", "knowledge_id", item.ID, "error", err)
	}

	publishEvent(ctx, uc.publisher, models.EventKnowledgeCreated, workspaceID, item)
	return item, nil
}

func (uc *KnowledgeUseCase) index(ctx context.Context, item *models.AgentKnowledgeItem) error {
	if item.Type == models.KnowledgeTypeFAQ {
		return uc.backend.StoreFAQ(ctx, backend.StoreFAQRequest{
			AgentID:           item.AgentID,
			WidgetID:          item.WidgetID,
			Title:             item.Title,
			Question:          item.FAQQuestion,
			Answer:            item.FAQAnswer,
			Type:              string(item.Type),
			EmbeddingProvider: item.EmbeddingProvider,
			EmbeddingModel:    item.EmbeddingModel,
			Metadata: map[string]any{
				"workspace_id": item.WorkspaceID,
				"knowledge_id": item.ID,
			},
		})
	}
	_, err := uc.backend.StoreKnowledge(ctx, item.EmbeddingModel, backend.StoreKnowledgeRequest{
		ID:          item.ID,
		WorkspaceID: item.WorkspaceID,
		AgentID:     item.AgentID,
		WidgetID:    item.WidgetID,
		Title:       item.Title,
		Content:     item.Content,
		Type:        string(item.Type),
		FileName:    item.FileName,
		FileURL:     item.FileURL,
		FileSize:    item.FileSize,
		WebsiteURL:  item.WebsiteURL,
	})
	return err
}

func (uc *KnowledgeUseCase) ListAgentKnowledge(ctx context.Context, workspaceID, agentID string) ([]models.AgentKnowledgeItem, error) {
	if _, err := uc.agents.Get(ctx, workspaceID, agentID); err != nil {
		return nil, err
	}
	items, err := uc.agentKnowledgeRepo.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list agent knowledge: %w", err)
	}
	return items, nil
}

func (uc *KnowledgeUseCase) ListWorkspaceKnowledge(ctx context.Context, workspaceID string) ([]models.AgentKnowledgeItem, error) {
	items, err := uc.agentKnowledgeRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace knowledge: %w", err)
	}
	return items, nil
}

func (uc *KnowledgeUseCase) DeleteAgentKnowledge(ctx context.Context, workspaceID, id string) error {
	item, err := uc.agentKnowledgeRepo.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return ErrKnowledgeNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get agent knowledge: %w", err)
	}
	if item.WorkspaceID != workspaceID {
		return ErrKnowledgeNotFound
	}

	// imported items are indexed under the id the backend assigned
	uc.unindex(ctx, util.FirstNonEmpty(item.BackendID, item.ID))
	if err := uc.agentKnowledgeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete agent knowledge: %w", err)
	}
	return nil
}

func (uc *KnowledgeUseCase) token(ctx context.Context, provider models.Provider, workspaceID string, notConnected error) (string, error) {
	token, err := uc.tokens.AccessToken(ctx, provider, workspaceID, "")
	if errors.Is(err, ErrConnectionNotFound) {
		return "", notConnected
	}
	return token, err
}

func (uc *KnowledgeUseCase) SearchNotionPages(ctx context.Context, workspaceID, query string) ([]backend.NotionPage, error) {
	apiKey, err := uc.token(ctx, models.ProviderNotion, workspaceID, ErrNotionNotConnected)
	if err != nil {
		return nil, err
	}
	return uc.backend.NotionSearchPages(ctx, apiKey, query)
}

// ImportNotion imports a page or a whole database and records it as agent knowledge.
func (uc *KnowledgeUseCase) ImportNotion(ctx context.Context, workspaceID, agentID string, params models.ImportNotionParams) (*models.AgentKnowledgeItem, error) {
	if params.PageID == "" && params.DatabaseID == "" {
		return nil, ErrNotionSourceMissing
	}
	if _, err := uc.agents.Get(ctx, workspaceID, agentID); err != nil {
		return nil, err
	}
	apiKey, err := uc.token(ctx, models.ProviderNotion, workspaceID, ErrNotionNotConnected)
	if err != nil {
		return nil, err
	}

	req := backend.NotionImportRequest{
		APIKey:            apiKey,
		PageID:            params.PageID,
		DatabaseID:        params.DatabaseID,
		WidgetID:          agentID,
		Title:             params.Title,
		EmbeddingProvider: util.FirstNonEmpty(params.EmbeddingProvider, uc.embeddingProvider),
		EmbeddingModel:    util.FirstNonEmpty(params.EmbeddingModel, uc.embeddingModel),
		Metadata: map[string]any{
			"workspace_id": workspaceID,
			"agent_id":     agentID,
		},
	}

	var resp *backend.ImportResponse
	if params.PageID != "" {
		req.DatabaseID = ""
		resp, err = uc.backend.NotionImportPage(ctx, req)
	} else {
		resp, err = uc.backend.NotionImportDatabase(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, models.NewError(http.StatusBadGateway, util.FirstNonEmpty(resp.Message, "Failed to import from Notion"))
	}

	now := uc.now()
	item := &models.AgentKnowledgeItem{
		ID:                models.NewID(),
		BackendID:         resp.ID,
		AgentID:           agentID,
		WorkspaceID:       workspaceID,
		Title:             util.FirstNonEmpty(resp.Title, params.Title),
		Content:           resp.Content,
		Type:              models.KnowledgeTypeNotion,
		NotionPageID:      util.FirstNonEmpty(params.PageID, params.DatabaseID),
		NotionURL:         util.FirstNonEmpty(resp.URL, params.URL),
		ChunksCreated:     resp.ChunksCreated,
		EmbeddingProvider: req.EmbeddingProvider,
		EmbeddingModel:    req.EmbeddingModel,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.agentKnowledgeRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to record notion import: %w", err)
	}
	publishEvent(ctx, uc.publisher, models.EventKnowledgeCreated, workspaceID, item)
	return item, nil
}

func (uc *KnowledgeUseCase) ListSpreadsheets(ctx context.Context, workspaceID, query string) (*backend.SpreadsheetList, error) {
	token, err := uc.token(ctx, models.ProviderGoogleSheets, workspaceID, ErrSheetsNotConnected)
	if err != nil {
		return nil, err
	}
	return uc.backend.ListSpreadsheets(ctx, token, query)
}

func (uc *KnowledgeUseCase) ImportSheet(ctx context.Context, workspaceID, agentID string, params models.ImportSheetParams) (*models.AgentKnowledgeItem, error) {
	if _, err := uc.agents.Get(ctx, workspaceID, agentID); err != nil {
		return nil, err
	}
	token, err := uc.token(ctx, models.ProviderGoogleSheets, workspaceID, ErrSheetsNotConnected)
	if err != nil {
		return nil, err
	}

	req := backend.SheetImportRequest{
		AccessToken:       token,
		SpreadsheetID:     params.SpreadsheetID,
		SheetName:         params.SheetName,
		AgentID:           agentID,
		Title:             params.Title,
		EmbeddingProvider: util.FirstNonEmpty(params.EmbeddingProvider, uc.embeddingProvider),
		EmbeddingModel:    util.FirstNonEmpty(params.EmbeddingModel, uc.embeddingModel),
		Metadata:          map[string]any{"workspace_id": workspaceID},
	}
	resp, err := uc.backend.ImportSheet(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, models.NewError(http.StatusBadGateway, util.FirstNonEmpty(resp.Message, "Failed to import sheet"))
	}

	now := uc.now()
	item := &models.AgentKnowledgeItem{
		ID:                models.NewID(),
		BackendID:         resp.ID,
		AgentID:           agentID,
		WorkspaceID:       workspaceID,
		Title:             util.FirstNonEmpty(resp.Title, params.Title),
		Content:           resp.Content,
		Type:              models.KnowledgeTypeGoogleSheets,
		GoogleSheetID:     params.SpreadsheetID,
		SheetName:         params.SheetName,
		FileURL:           resp.URL,
		RowsCount:         resp.RowsCount,
		ChunksCreated:     resp.ChunksCreated,
		EmbeddingProvider: req.EmbeddingProvider,
		EmbeddingModel:    req.EmbeddingModel,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.agentKnowledgeRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to record sheet import: %w", err)
	}
	publishEvent(ctx, uc.publisher, models.EventKnowledgeCreated, workspaceID, item)
	return item, nil
}

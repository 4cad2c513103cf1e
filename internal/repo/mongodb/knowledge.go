package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

type KnowledgeBaseRepository interface {
	Create(ctx context.Context, item *models.KnowledgeBaseItem) error
	GetByID(ctx context.Context, id string) (*models.KnowledgeBaseItem, error)
	ListByWidget(ctx context.Context, widgetID string) ([]models.KnowledgeBaseItem, error)
	Delete(ctx context.Context, id string) error
}

type knowledgeBaseRepo struct {
	baseRepo[models.KnowledgeBaseItem]
}

func NewKnowledgeBaseRepository(db *DB) KnowledgeBaseRepository {
	return &knowledgeBaseRepo{
		baseRepo: newBaseRepo[models.KnowledgeBaseItem](db),
	}
}

func (r *knowledgeBaseRepo) Create(ctx context.Context, item *models.KnowledgeBaseItem) error {
	if err := r.Insert(ctx, *item); err != nil {
		return fmt.Errorf("insert knowledge item: %w", err)
	}
	return nil
}

func (r *knowledgeBaseRepo) GetByID(ctx context.Context, id string) (*models.KnowledgeBaseItem, error) {
	return r.FindByID(ctx, id)
}

func (r *knowledgeBaseRepo) ListByWidget(ctx context.Context, widgetID string) ([]models.KnowledgeBaseItem, error) {
	return r.Find(ctx, bson.M{"widgetId": widgetID}, sortBy("createdAt", -1))
}

func (r *knowledgeBaseRepo) Delete(ctx context.Context, id string) error {
	return r.DeleteByID(ctx, id)
}

type AgentKnowledgeRepository interface {
	Create(ctx context.Context, item *models.AgentKnowledgeItem) error
	GetByID(ctx context.Context, id string) (*models.AgentKnowledgeItem, error)
	ListByAgent(ctx context.Context, agentID string) ([]models.AgentKnowledgeItem, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]models.AgentKnowledgeItem, error)
	Delete(ctx context.Context, id string) error
	DeleteByAgent(ctx context.Context, agentID string) (int64, error)
}

type agentKnowledgeRepo struct {
	baseRepo[models.AgentKnowledgeItem]
}

func NewAgentKnowledgeRepository(db *DB) AgentKnowledgeRepository {
	return &agentKnowledgeRepo{
		baseRepo: newBaseRepo[models.AgentKnowledgeItem](db),
	}
}

func (r *agentKnowledgeRepo) Create(ctx context.Context, item *models.AgentKnowledgeItem) error {
	if err := r.Insert(ctx, *item); err != nil {
		return fmt.Errorf("insert agent knowledge item: %w", err)
	}
	return nil
}

func (r *agentKnowledgeRepo) GetByID(ctx context.Context, id string) (*models.AgentKnowledgeItem, error) {
	return r.FindByID(ctx, id)
}

func (r *agentKnowledgeRepo) ListByAgent(ctx context.Context, agentID string) ([]models.AgentKnowledgeItem, error) {
	return r.Find(ctx, bson.M{"agentId": agentID}, sortBy("createdAt", -1))
}

func (r *agentKnowledgeRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.AgentKnowledgeItem, error) {
	return r.Find(ctx, bson.M{"workspaceId": workspaceID}, sortBy("createdAt", -1))
}

func (r *agentKnowledgeRepo) Delete(ctx context.Context, id string) error {
	return r.DeleteByID(ctx, id)
}

func (r *agentKnowledgeRepo) DeleteByAgent(ctx context.Context, agentID string) (int64, error) {
	return r.DeleteMany(ctx, bson.M{"agentId": agentID})
}

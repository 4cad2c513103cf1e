package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

type AgentRepository interface {
	Create(ctx context.Context, agent *models.Agent) error
	GetByID(ctx context.Context, id string) (*models.Agent, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Agent, error)
	Update(ctx context.Context, id string, set bson.M) (*models.Agent, error)
	Delete(ctx context.Context, id string) error
}

type agentRepo struct {
	baseRepo[models.Agent]
}

func NewAgentRepository(db *DB) AgentRepository {
	return &agentRepo{
		baseRepo: newBaseRepo[models.Agent](db),
	}
}

func (r *agentRepo) Create(ctx context.Context, agent *models.Agent) error {
	if err := r.Insert(ctx, *agent); err != nil {
		return fmt.Errorf("insert agent: %w", err)
	}
	return nil
}

func (r *agentRepo) GetByID(ctx context.Context, id string) (*models.Agent, error) {
	return r.FindByID(ctx, id)
}

func (r *agentRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Agent, error) {
	return r.Find(ctx, bson.M{"workspaceId": workspaceID}, sortBy("createdAt", -1))
}

func (r *agentRepo) Update(ctx context.Context, id string, set bson.M) (*models.Agent, error) {
	return r.UpdateByID(ctx, id, set)
}

func (r *agentRepo) Delete(ctx context.Context, id string) error {
	return r.DeleteByID(ctx, id)
}

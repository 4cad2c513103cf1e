package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

type WorkspaceRepository interface {
	Create(ctx context.Context, ws *models.Workspace) error
	GetByID(ctx context.Context, id string) (*models.Workspace, error)
	GetByURL(ctx context.Context, url string) (*models.Workspace, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Workspace, error)
	Update(ctx context.Context, id string, set bson.M) (*models.Workspace, error)
	Delete(ctx context.Context, id string) error
}

type workspaceRepo struct {
	baseRepo[models.Workspace]
}

func NewWorkspaceRepository(db *DB) WorkspaceRepository {
	return &workspaceRepo{
		baseRepo: newBaseRepo[models.Workspace](db),
	}
}

func (r *workspaceRepo) Create(ctx context.Context, ws *models.Workspace) error {
	if err := r.Insert(ctx, *ws); err != nil {
		return fmt.Errorf("insert workspace: %w", err)
	}
	return nil
}

func (r *workspaceRepo) GetByID(ctx context.Context, id string) (*models.Workspace, error) {
	return r.FindByID(ctx, id)
}

func (r *workspaceRepo) GetByURL(ctx context.Context, url string) (*models.Workspace, error) {
	return r.FindOne(ctx, bson.M{"url": url})
}

func (r *workspaceRepo) ListByIDs(ctx context.Context, ids []string) ([]models.Workspace, error) {
	if len(ids) == 0 {
		return []models.Workspace{}, nil
	}
	return r.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, sortBy("createdAt", -1))
}

func (r *workspaceRepo) Update(ctx context.Context, id string, set bson.M) (*models.Workspace, error) {
	return r.UpdateByID(ctx, id, set)
}

func (r *workspaceRepo) Delete(ctx context.Context, id string) error {
	return r.DeleteByID(ctx, id)
}

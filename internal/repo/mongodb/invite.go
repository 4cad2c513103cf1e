package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

type InviteRepository interface {
	Create(ctx context.Context, invite *models.WorkspaceInvite) error
	GetByID(ctx context.Context, id string) (*models.WorkspaceInvite, error)
	GetByToken(ctx context.Context, token string) (*models.WorkspaceInvite, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]models.WorkspaceInvite, error)
	SetStatus(ctx context.Context, id string, status models.InviteStatus) error
	DeleteByWorkspace(ctx context.Context, workspaceID string) (int64, error)
}

type inviteRepo struct {
	baseRepo[models.WorkspaceInvite]
}

func NewInviteRepository(db *DB) InviteRepository {
	return &inviteRepo{
		baseRepo: newBaseRepo[models.WorkspaceInvite](db),
	}
}

func (r *inviteRepo) Create(ctx context.Context, invite *models.WorkspaceInvite) error {
	if err := r.Insert(ctx, *invite); err != nil {
		return fmt.Errorf("insert invite: %w", err)
	}
	return nil
}

func (r *inviteRepo) GetByID(ctx context.Context, id string) (*models.WorkspaceInvite, error) {
	return r.FindByID(ctx, id)
}

func (r *inviteRepo) GetByToken(ctx context.Context, token string) (*models.WorkspaceInvite, error) {
	return r.FindOne(ctx, bson.M{"token": token})
}

func (r *inviteRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.WorkspaceInvite, error) {
	return r.Find(ctx, bson.M{"workspaceId": workspaceID}, sortBy("createdAt", -1))
}

func (r *inviteRepo) SetStatus(ctx context.Context, id string, status models.InviteStatus) error {
	_, err := r.updateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	return err
}

func (r *inviteRepo) DeleteByWorkspace(ctx context.Context, workspaceID string) (int64, error) {
	return r.DeleteMany(ctx, bson.M{"workspaceId": workspaceID})
}

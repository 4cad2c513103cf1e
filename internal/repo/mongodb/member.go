package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

type MemberRepository interface {
	// Create fails with models.ErrAlreadyExists when the user is already a member.
	Create(ctx context.Context, member *models.WorkspaceMember) error
	Get(ctx context.Context, userID, workspaceID string) (*models.WorkspaceMember, error)
	GetOwner(ctx context.Context, workspaceID string) (*models.WorkspaceMember, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]models.WorkspaceMember, error)
	ListByUser(ctx context.Context, userID string) ([]models.WorkspaceMember, error)
	Delete(ctx context.Context, userID, workspaceID string) error
	DeleteByWorkspace(ctx context.Context, workspaceID string) (int64, error)
}

type memberRepo struct {
	baseRepo[models.WorkspaceMember]
}

func NewMemberRepository(db *DB) MemberRepository {
	return &memberRepo{
		baseRepo: newBaseRepo[models.WorkspaceMember](db),
	}
}

func (r *memberRepo) Create(ctx context.Context, member *models.WorkspaceMember) error {
	member.ID = models.MemberID(member.UserID, member.WorkspaceID)
	if err := r.Insert(ctx, *member); err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

func (r *memberRepo) Get(ctx context.Context, userID, workspaceID string) (*models.WorkspaceMember, error) {
	return r.FindByID(ctx, models.MemberID(userID, workspaceID))
}

func (r *memberRepo) GetOwner(ctx context.Context, workspaceID string) (*models.WorkspaceMember, error) {
	return r.FindOne(ctx, bson.M{"workspaceId": workspaceID, "role": models.RoleOwner})
}

func (r *memberRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.WorkspaceMember, error) {
	return r.Find(ctx, bson.M{"workspaceId": workspaceID}, sortBy("joinedAt", 1))
}

func (r *memberRepo) ListByUser(ctx context.Context, userID string) ([]models.WorkspaceMember, error) {
	return r.Find(ctx, bson.M{"userId": userID})
}

func (r *memberRepo) Delete(ctx context.Context, userID, workspaceID string) error {
	return r.DeleteByID(ctx, models.MemberID(userID, workspaceID))
}

func (r *memberRepo) DeleteByWorkspace(ctx context.Context, workspaceID string) (int64, error) {
	return r.DeleteMany(ctx, bson.M{"workspaceId": workspaceID})
}

package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, msg *models.ChatMessage) error
	GetByID(ctx context.Context, id string) (*models.ChatMessage, error)
	ListByConversation(ctx context.Context, conversationID string) ([]models.ChatMessage, error)
	// MarkRead sets readAt on the unread messages sent by sender.
	MarkRead(ctx context.Context, conversationID string, sender models.Sender, at time.Time) (int64, error)
	MarkEmailNotificationSent(ctx context.Context, id string, at time.Time) error
	DeleteByConversation(ctx context.Context, conversationID string) (int64, error)
}

type chatMessageRepo struct {
	baseRepo[models.ChatMessage]
}

func NewChatMessageRepository(db *DB) ChatMessageRepository {
	return &chatMessageRepo{
		baseRepo: newBaseRepo[models.ChatMessage](db),
	}
}

func (r *chatMessageRepo) Create(ctx context.Context, msg *models.ChatMessage) error {
	if err := r.Insert(ctx, *msg); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *chatMessageRepo) GetByID(ctx context.Context, id string) (*models.ChatMessage, error) {
	return r.FindByID(ctx, id)
}

func (r *chatMessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]models.ChatMessage, error) {
	return r.Find(ctx, bson.M{"conversationId": conversationID}, sortBy("createdAt", 1))
}

func (r *chatMessageRepo) MarkRead(ctx context.Context, conversationID string, sender models.Sender, at time.Time) (int64, error) {
	return r.UpdateMany(ctx, bson.M{
		"conversationId": conversationID,
		"sender":         sender,
		"readAt":         bson.M{"$exists": false},
	}, bson.M{"readAt": at})
}

func (r *chatMessageRepo) MarkEmailNotificationSent(ctx context.Context, id string, at time.Time) error {
	_, err := r.updateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"emailNotificationSent":   true,
		"emailNotificationSentAt": at,
	}})
	return err
}

func (r *chatMessageRepo) DeleteByConversation(ctx context.Context, conversationID string) (int64, error) {
	return r.DeleteMany(ctx, bson.M{"conversationId": conversationID})
}

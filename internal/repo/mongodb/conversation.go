package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

type ConversationRepository interface {
	Create(ctx context.Context, conv *models.ChatConversation) error
	GetByID(ctx context.Context, id string) (*models.ChatConversation, error)
	ListByBusiness(ctx context.Context, businessID string, limit, skip int64) (*PaginateWithTotal[models.ChatConversation], error)
	Update(ctx context.Context, id string, set bson.M, unset ...string) (*models.ChatConversation, error)
	// RecordMessage stores the last message preview. The unread counter is
	// incremented only for customer messages.
	RecordMessage(ctx context.Context, id string, msg *models.ChatMessage) error
}

type conversationRepo struct {
	baseRepo[models.ChatConversation]
}

func NewConversationRepository(db *DB) ConversationRepository {
	return &conversationRepo{
		baseRepo: newBaseRepo[models.ChatConversation](db),
	}
}

func (r *conversationRepo) Create(ctx context.Context, conv *models.ChatConversation) error {
	if err := r.Insert(ctx, *conv); err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

func (r *conversationRepo) GetByID(ctx context.Context, id string) (*models.ChatConversation, error) {
	return r.FindByID(ctx, id)
}

func (r *conversationRepo) ListByBusiness(ctx context.Context, businessID string, limit, skip int64) (*PaginateWithTotal[models.ChatConversation], error) {
	return r.PaginateWithTotal(ctx, bson.M{"businessId": businessID}, limit, skip, sortBy("updatedAt", -1))
}

func (r *conversationRepo) Update(ctx context.Context, id string, set bson.M, unset ...string) (*models.ChatConversation, error) {
	update := bson.M{"$set": withUpdatedAt(set)}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, f := range unset {
			fields[f] = ""
		}
		update["$unset"] = fields
	}
	return r.updateOne(ctx, bson.M{"_id": id}, update)
}

func (r *conversationRepo) RecordMessage(ctx context.Context, id string, msg *models.ChatMessage) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"lastMessage":   msg.Text,
			"lastMessageAt": msg.CreatedAt,
			"updatedAt":     now,
		},
	}
	if msg.Sender == models.SenderCustomer {
		update["$inc"] = bson.M{"unreadCount": 1}
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

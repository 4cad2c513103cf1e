package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

type WidgetRepository interface {
	Create(ctx context.Context, widget *models.ChatWidget) error
	GetByID(ctx context.Context, id string) (*models.ChatWidget, error)
	ListByBusiness(ctx context.Context, businessID string) ([]models.ChatWidget, error)
	Replace(ctx context.Context, widget *models.ChatWidget) error
	Delete(ctx context.Context, id string) error
}

type widgetRepo struct {
	baseRepo[models.ChatWidget]
}

func NewWidgetRepository(db *DB) WidgetRepository {
	return &widgetRepo{
		baseRepo: newBaseRepo[models.ChatWidget](db),
	}
}

func (r *widgetRepo) Create(ctx context.Context, widget *models.ChatWidget) error {
	if err := r.Insert(ctx, *widget); err != nil {
		return fmt.Errorf("insert widget: %w", err)
	}
	return nil
}

func (r *widgetRepo) GetByID(ctx context.Context, id string) (*models.ChatWidget, error) {
	return r.FindByID(ctx, id)
}

func (r *widgetRepo) ListByBusiness(ctx context.Context, businessID string) ([]models.ChatWidget, error) {
	return r.Find(ctx, bson.M{"businessId": businessID}, sortBy("createdAt", -1))
}

func (r *widgetRepo) Replace(ctx context.Context, widget *models.ChatWidget) error {
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": widget.ID}, widget)
	if err != nil {
		return fmt.Errorf("replace widget: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *widgetRepo) Delete(ctx context.Context, id string) error {
	return r.DeleteByID(ctx, id)
}

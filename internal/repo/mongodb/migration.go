package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
)

const (
	MigrationStatusRunning   = "running"
	MigrationStatusCompleted = "completed"
	MigrationStatusFailed    = "failed"

	EnsureIndexesMigration = "ensure_indexes"
)

// MigrationRepository handles database migrations
type MigrationRepository interface {
	EnsureIndexes(ctx context.Context) error
	GetMigrationStatus(ctx context.Context, migrationName string) (*MigrationStatus, error)
	SetMigrationStatus(ctx context.Context, migrationName string, status string, result *MigrationResult) error
}

type migrationRepo struct {
	db *DB
}

// MigrationStatus tracks the status of database migrations
type MigrationStatus struct {
	ID          string           `bson:"_id" json:"id"`
	Status      string           `bson:"status" json:"status"`
	StartedAt   *time.Time       `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt *time.Time       `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Result      *MigrationResult `bson:"result,omitempty" json:"result,omitempty"`
	CreatedAt   time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// MigrationResult contains the results of a migration
type MigrationResult struct {
	IndexesCreated []string `bson:"indexesCreated,omitempty" json:"indexesCreated,omitempty"`
	Errors         []string `bson:"errors,omitempty" json:"errors,omitempty"`
	Duration       string   `bson:"duration" json:"duration"`
}

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func keys(fields ...string) bson.D {
	d := bson.D{}
	for _, f := range fields {
		order := 1
		if f[0] == '-' {
			f, order = f[1:], -1
		}
		d = append(d, bson.E{Key: f, Value: order})
	}
	return d
}

func indexes() []collectionIndexes {
	return []collectionIndexes{
		{models.Workspace{}.CollectionName(), []mongo.IndexModel{
			{Keys: keys("url"), Options: options.Index().SetUnique(true)},
		}},
		{models.WorkspaceMember{}.CollectionName(), []mongo.IndexModel{
			{Keys: keys("workspaceId", "joinedAt")},
			{Keys: keys("userId")},
		}},
		{models.WorkspaceInvite{}.CollectionName(), []mongo.IndexModel{
			{Keys: keys("workspaceId", "-createdAt")},
			{Keys: keys("token"), Options: options.Index().SetUnique(true)},
		}},
		{models.Agent{}.CollectionName(), []mongo.IndexModel{
			{Keys: keys("workspaceId", "-createdAt")},
		}},
		{models.ChatWidget{}.CollectionName(), []mongo.IndexModel{
			{Keys: keys("businessId", "-createdAt")},
		}},
		{models.ChatConversation{}.CollectionName(), []mongo.IndexModel{
			{Keys: keys("businessId", "-updatedAt")},
		}},
		{models.ChatMessage{}.CollectionName(), []mongo.IndexModel{
			{Keys: keys("conversationId", "createdAt")},
			{Keys: keys("conversationId", "sender", "readAt")},
		}},
		{models.KnowledgeBaseItem{}.CollectionName(), []mongo.IndexModel{
			{Keys: keys("widgetId", "-createdAt")},
		}},
		{models.AgentKnowledgeItem{}.CollectionName(), []mongo.IndexModel{
			{Keys: keys("agentId", "-createdAt")},
			{Keys: keys("workspaceId", "-createdAt")},
		}},
	}
}

func NewMigrationRepository(db *DB) MigrationRepository {
	return &migrationRepo{
		db: db,
	}
}

// EnsureIndexes creates the indexes the repositories query by. Creating an
// existing index is a no-op, so this is safe to run on every deploy.
func (r *migrationRepo) EnsureIndexes(ctx context.Context) error {
	migrationName := EnsureIndexesMigration

	startTime := time.Now()
	if err := r.SetMigrationStatus(ctx, migrationName, MigrationStatusRunning, nil); err != nil {
		return fmt.Errorf("failed to set migration status: %w", err)
	}

	log.Infow(ctx, "Ensuring mongo indexes", "migration", migrationName)

	result := &MigrationResult{}
	for _, ci := range indexes() {
		names, err := r.db.Database.Collection(ci.collection).Indexes().CreateMany(ctx, ci.models)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", ci.collection, err))
			continue
		}
		for _, name := range names {
			result.IndexesCreated = append(result.IndexesCreated, ci.collection+"."+name)
		}
	}

	result.Duration = time.Since(startTime).String()
	if len(result.Errors) > 0 {
		if err := r.SetMigrationStatus(ctx, migrationName, MigrationStatusFailed, result); err != nil {
			log.Errorw(ctx, "Failed to set migration failure status", "error", err)
		}
		return fmt.Errorf("ensure indexes: %d collections failed: %v", len(result.Errors), result.Errors)
	}

	if err := r.SetMigrationStatus(ctx, migrationName, MigrationStatusCompleted, result); err != nil {
		log.Errorw(ctx, "Failed to set migration completion status", "error", err)
	}

	log.Infow(ctx, "Mongo indexes ensured",
		"migration", migrationName,
		"indexes", len(result.IndexesCreated),
		"duration", result.Duration)

	return nil
}

func (r *migrationRepo) GetMigrationStatus(ctx context.Context, migrationName string) (*MigrationStatus, error) {
	collection := r.db.Database.Collection("migrations")

	var status MigrationStatus
	err := collection.FindOne(ctx, bson.M{"_id": migrationName}).Decode(&status)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get migration status: %w", err)
	}

	return &status, nil
}

func (r *migrationRepo) SetMigrationStatus(ctx context.Context, migrationName string, status string, result *MigrationResult) error {
	collection := r.db.Database.Collection("migrations")

	now := time.Now()
	set := bson.M{
		"status":    status,
		"updatedAt": now,
	}
	switch status {
	case MigrationStatusRunning:
		set["startedAt"] = now
	case MigrationStatusCompleted, MigrationStatusFailed:
		set["completedAt"] = now
		if result != nil {
			set["result"] = result
		}
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := collection.UpdateOne(ctx, bson.M{"_id": migrationName}, update, opts); err != nil {
		return fmt.Errorf("failed to set migration status: %w", err)
	}

	return nil
}

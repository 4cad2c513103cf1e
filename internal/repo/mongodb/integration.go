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
)

// ConnectionRepository stores integration connections. Every provider keeps
// its records in its own collection, named by the caller.
type ConnectionRepository interface {
	Get(ctx context.Context, collection, id string) (*models.Connection, error)
	// Save merges the non-empty fields of conn into the stored record,
	// creating it when missing.
	Save(ctx context.Context, collection string, conn *models.Connection) (*models.Connection, error)
	Update(ctx context.Context, collection, id string, set bson.M) (*models.Connection, error)
	Delete(ctx context.Context, collection, id string) error
}

type connectionRepo struct {
	db *DB
}

func NewConnectionRepository(db *DB) ConnectionRepository {
	return &connectionRepo{db: db}
}

func (r *connectionRepo) coll(name string) *mongo.Collection {
	return r.db.Database.Collection(name)
}

func (r *connectionRepo) Get(ctx context.Context, collection, id string) (*models.Connection, error) {
	var conn models.Connection
	err := r.coll(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&conn)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find connection: %w", err)
	}
	return &conn, nil
}

func (r *connectionRepo) Save(ctx context.Context, collection string, conn *models.Connection) (*models.Connection, error) {
	raw, err := bson.Marshal(conn)
	if err != nil {
		return nil, fmt.Errorf("marshal connection: %w", err)
	}
	set := bson.M{}
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("unmarshal connection: %w", err)
	}
	delete(set, "_id")
	delete(set, "createdAt")

	now := time.Now()
	set["updatedAt"] = now
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved models.Connection
	if err := r.coll(collection).FindOneAndUpdate(ctx, bson.M{"_id": conn.ID}, update, opts).Decode(&saved); err != nil {
		return nil, fmt.Errorf("upsert connection: %w", err)
	}
	return &saved, nil
}

func (r *connectionRepo) Update(ctx context.Context, collection, id string, set bson.M) (*models.Connection, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Connection
	err := r.coll(collection).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": withUpdatedAt(set)}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update connection: %w", err)
	}
	return &updated, nil
}

func (r *connectionRepo) Delete(ctx context.Context, collection, id string) error {
	result, err := r.coll(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

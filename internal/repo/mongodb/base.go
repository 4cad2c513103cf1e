package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/ragzy-ai/ragzy-api/internal/models"
)

var _ IRepository[IEntity] = (*baseRepo[IEntity])(nil)

// IEntity is a document stored in its own collection under a string _id.
type IEntity interface {
	CollectionName() string
	GetID() string
}

type PaginateWithTotal[E any] struct {
	Total int64
	Data  []E
}

// IRepository is the CRUD surface shared by every collection. Lookups return
// models.ErrNotFound for missing documents and writes return
// models.ErrAlreadyExists on unique index violations.
type IRepository[E IEntity] interface {
	Insert(ctx context.Context, entity E) error
	Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]E, error)
	FindByID(ctx context.Context, docID string) (*E, error)
	FindOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*E, error)
	UpdateByID(ctx context.Context, docID string, set bson.M) (*E, error)
	UpdateMany(ctx context.Context, filter bson.M, set bson.M) (int64, error)
	DeleteByID(ctx context.Context, docID string) error
	DeleteMany(ctx context.Context, filter bson.M) (int64, error)
	PaginateWithTotal(ctx context.Context, filter bson.M, limit int64, skip int64, opts ...*options.FindOptions) (*PaginateWithTotal[E], error)
}

type baseRepo[E IEntity] struct {
	coll *mongo.Collection
}

func newBaseRepo[E IEntity](db *DB) baseRepo[E] {
	var zero E
	return baseRepo[E]{coll: db.Database.Collection(zero.CollectionName())}
}

// mapErr converts driver errors into the models sentinels. op names the
// failed call for errors that stay unmapped.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return models.ErrAlreadyExists
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (r *baseRepo[E]) Insert(ctx context.Context, entity E) error {
	_, err := r.coll.InsertOne(ctx, entity)
	return mapErr("insert "+r.coll.Name(), err)
}

func (r *baseRepo[E]) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]E, error) {
	return r.findAll(ctx, filter, opts...)
}

func (r *baseRepo[E]) findAll(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]E, error) {
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, mapErr("find "+r.coll.Name(), err)
	}
	out := make([]E, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, mapErr("decode "+r.coll.Name(), err)
	}
	return out, nil
}

func (r *baseRepo[E]) FindByID(ctx context.Context, docID string) (*E, error) {
	return r.FindOne(ctx, bson.M{"_id": docID})
}

func (r *baseRepo[E]) FindOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*E, error) {
	var entity E
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&entity); err != nil {
		return nil, mapErr("find one "+r.coll.Name(), err)
	}
	return &entity, nil
}

// UpdateByID sets the given fields and returns the updated document.
// updatedAt is stamped unless set already carries it.
func (r *baseRepo[E]) UpdateByID(ctx context.Context, docID string, set bson.M) (*E, error) {
	return r.updateOne(ctx, bson.M{"_id": docID}, bson.M{"$set": withUpdatedAt(set)})
}

func (r *baseRepo[E]) updateOne(ctx context.Context, filter bson.M, update bson.M) (*E, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var entity E
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, after).Decode(&entity); err != nil {
		return nil, mapErr("update "+r.coll.Name(), err)
	}
	return &entity, nil
}

func (r *baseRepo[E]) UpdateMany(ctx context.Context, filter bson.M, set bson.M) (int64, error) {
	res, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return 0, mapErr("update many "+r.coll.Name(), err)
	}
	return res.ModifiedCount, nil
}

func (r *baseRepo[E]) DeleteByID(ctx context.Context, docID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": docID})
	if err != nil {
		return mapErr("delete "+r.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *baseRepo[E]) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, mapErr("delete many "+r.coll.Name(), err)
	}
	return res.DeletedCount, nil
}

// PaginateWithTotal runs the page query and the count concurrently.
func (r *baseRepo[E]) PaginateWithTotal(ctx context.Context, filter bson.M, limit int64, skip int64, opts ...*options.FindOptions) (*PaginateWithTotal[E], error) {
	page := &PaginateWithTotal[E]{}
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		opts = append(opts, options.Find().SetSkip(skip).SetLimit(limit))
		data, err := r.findAll(ctx, filter, opts...)
		page.Data = data
		return err
	})
	group.Go(func() error {
		total, err := r.coll.CountDocuments(ctx, filter)
		page.Total = total
		return mapErr("count "+r.coll.Name(), err)
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return page, nil
}

func withUpdatedAt(set bson.M) bson.M {
	if _, ok := set["updatedAt"]; !ok {
		set["updatedAt"] = time.Now()
	}
	return set
}

func sortBy(field string, order int) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: order}})
}

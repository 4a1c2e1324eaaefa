package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-recruitment-platform/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DocumentStore is the MongoDB implementation of domain.DocumentStore.
// Documents are encoded with the bson tags of the domain types.
type DocumentStore struct {
	db *driver.Database
}

func NewDocumentStore(db *driver.Database) *DocumentStore {
	return &DocumentStore{db: db}
}

// EnsureIndexes creates the secondary indexes used by listings and lookups.
func (s *DocumentStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]driver.IndexModel{
		domain.CollectionJobs: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "createdBy", Value: 1}}},
			{Keys: bson.D{{Key: "companyId", Value: 1}}},
			{Keys: bson.D{{Key: "applicants.applicantId", Value: 1}}},
		},
		domain.CollectionUsers: {
			{Keys: bson.D{{Key: "company.id", Value: 1}}},
			{Keys: bson.D{{Key: "company.verified", Value: 1}, {Key: "company.isActive", Value: 1}}},
		},
	}
	for collection, models := range indexes {
		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return wrapErr("index "+collection, err)
		}
	}
	return nil
}

func (s *DocumentStore) FindByID(ctx context.Context, collection, id string, out any) error {
	err := s.db.Collection(collection).FindOne(ctx, byID(id)).Decode(out)
	return wrapErr("find "+collection, err)
}

func (s *DocumentStore) FindOne(ctx context.Context, collection string, filter domain.Filter, out any) error {
	f, err := filterToBSON(filter)
	if err != nil {
		return err
	}
	opts := options.FindOne().SetSort(sortToBSON(nil))
	err = s.db.Collection(collection).FindOne(ctx, f, opts).Decode(out)
	return wrapErr("find one "+collection, err)
}

func (s *DocumentStore) FindPage(ctx context.Context, collection string, q domain.Query, out any) error {
	f, err := filterToBSON(q.Filter)
	if err != nil {
		return err
	}
	opts := options.Find().SetSort(sortToBSON(q.Sort))
	if q.Skip > 0 {
		opts.SetSkip(int64(q.Skip))
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := s.db.Collection(collection).Find(ctx, f, opts)
	if err != nil {
		return wrapErr("query "+collection, err)
	}
	defer cur.Close(ctx)
	return wrapErr("decode "+collection, cur.All(ctx, out))
}

func (s *DocumentStore) Count(ctx context.Context, collection string, filter domain.Filter) (int64, error) {
	f, err := filterToBSON(filter)
	if err != nil {
		return 0, err
	}
	total, err := s.db.Collection(collection).CountDocuments(ctx, f)
	if err != nil {
		return 0, wrapErr("count "+collection, err)
	}
	return total, nil
}

func (s *DocumentStore) Insert(ctx context.Context, collection, id string, doc any) error {
	_, err := s.db.Collection(collection).InsertOne(ctx, doc)
	return wrapErr("insert "+collection+" "+id, err)
}

func (s *DocumentStore) Replace(ctx context.Context, collection, id string, doc any) error {
	res, err := s.db.Collection(collection).ReplaceOne(ctx, byID(id), doc)
	return matched("replace "+collection, res, err)
}

func (s *DocumentStore) UpdateFields(ctx context.Context, collection, id string, set map[string]any) error {
	if len(set) == 0 {
		return nil
	}
	res, err := s.db.Collection(collection).UpdateOne(ctx, byID(id), bson.M{"$set": bson.M(set)})
	return matched("update "+collection, res, err)
}

func (s *DocumentStore) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	res, err := s.db.Collection(collection).UpdateOne(ctx, byID(id), bson.M{"$inc": bson.M{field: delta}})
	return matched("increment "+collection, res, err)
}

// PushToArray appends with a single UpdateOne. The uniqueness guard is part
// of the filter, so two racing pushes for the same key cannot both match.
func (s *DocumentStore) PushToArray(ctx context.Context, collection, id string, push domain.ArrayPush) error {
	filter := byID(id)
	if push.UniqueBy != "" {
		filter[push.Array+"."+push.UniqueBy] = bson.M{"$ne": push.UniqueValue}
	}
	update := bson.M{"$push": bson.M{push.Array: push.Value}}
	if len(push.Inc) > 0 {
		inc := bson.M{}
		for k, v := range push.Inc {
			inc[k] = v
		}
		update["$inc"] = inc
	}

	coll := s.db.Collection(collection)
	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return wrapErr("push "+collection, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	if push.UniqueBy == "" {
		return domain.ErrNotFound
	}
	n, err := coll.CountDocuments(ctx, byID(id))
	if err != nil {
		return wrapErr("push "+collection, err)
	}
	if n > 0 {
		return domain.ErrDuplicate
	}
	return domain.ErrNotFound
}

// UpdateArrayElement uses the positional operator so the element is located
// and modified by the same atomic update.
func (s *DocumentStore) UpdateArrayElement(ctx context.Context, collection, id string, update domain.ArrayElementUpdate) error {
	filter := byID(id)
	filter[update.Array+"."+update.MatchField] = update.MatchValue

	doc := bson.M{}
	if len(update.Set) > 0 {
		set := bson.M{}
		for k, v := range update.Set {
			set[update.Array+".$."+k] = v
		}
		doc["$set"] = set
	}
	if len(update.Push) > 0 {
		push := bson.M{}
		for k, v := range update.Push {
			push[update.Array+".$."+k] = v
		}
		doc["$push"] = push
	}
	if len(doc) == 0 {
		return nil
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx, filter, doc)
	return matched("update element "+collection, res, err)
}

func (s *DocumentStore) SoftDelete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).UpdateOne(ctx, byID(id),
		bson.M{"$set": bson.M{deletedAtField: time.Now().UTC()}})
	return matched("delete "+collection, res, err)
}

func (s *DocumentStore) Ping(ctx context.Context) error {
	return wrapErr("ping", s.db.Client().Ping(ctx, nil))
}

func matched(op string, res *driver.UpdateResult, err error) error {
	if err != nil {
		return wrapErr(op, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func wrapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, driver.ErrNoDocuments):
		return domain.ErrNotFound
	case driver.IsDuplicateKeyError(err):
		return domain.ErrDuplicate
	case driver.IsTimeout(err), driver.IsNetworkError(err):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

package docstore

import (
	"context"
	"errors"
	"fmt"

	"joingo/internal/core"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps each document under its key as _id.
// Transactions require a replica set or sharded cluster.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database)}
}

func (s *MongoStore) Get(ctx context.Context, collection core.Collection, key string) (*Snapshot, error) {
	return s.get(ctx, collection, key)
}

func (s *MongoStore) get(ctx context.Context, collection core.Collection, key string) (*Snapshot, error) {
	raw, err := s.db.Collection(string(collection)).FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &Snapshot{Key: key}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Snapshot{Key: key, Exists: true, raw: raw}, nil
}

func (s *MongoStore) Set(ctx context.Context, collection core.Collection, key string, data any, opts ...SetOption) error {
	return s.set(ctx, collection, key, data, applySetOptions(opts))
}

func (s *MongoStore) set(ctx context.Context, collection core.Collection, key string, data any, o setOptions) error {
	doc, err := toDocument(data)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, key, err)
	}
	coll := s.db.Collection(string(collection))
	filter := bson.D{{Key: "_id", Value: key}}

	if !o.merge {
		_, err = coll.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
		return err
	}
	// $set 不可為空；空 merge 只需確保文件存在
	update := bson.D{{Key: "$set", Value: doc}}
	if len(doc) == 0 {
		update = bson.D{{Key: "$setOnInsert", Value: bson.D{{Key: "_id", Value: key}}}}
	}
	_, err = coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (s *MongoStore) Find(ctx context.Context, collection core.Collection, q Query) ([]*Snapshot, error) {
	filter := bson.D{}
	for _, f := range q.Filters {
		switch f.Op {
		case OpEqual:
			filter = append(filter, bson.E{Key: f.Field, Value: f.Value})
		case OpLess:
			filter = append(filter, bson.E{Key: f.Field, Value: bson.D{{Key: "$lt", Value: f.Value}}})
		default:
			return nil, fmt.Errorf("docstore: unsupported operator %q", f.Op)
		}
	}

	findOptions := options.Find()
	if q.OrderBy != "" {
		direction := 1
		if q.Descending {
			direction = -1
		}
		findOptions.SetSort(bson.D{{Key: q.OrderBy, Value: direction}, {Key: "_id", Value: 1}})
	}
	if q.Limit > 0 {
		findOptions.SetLimit(q.Limit)
	}
	if q.Index != "" {
		findOptions.SetHint(q.Index)
	}

	cursor, err := s.db.Collection(string(collection)).Find(ctx, filter, findOptions)
	if err != nil {
		if q.Index != "" && isBadHint(err) {
			return nil, fmt.Errorf("%w: %s: %v", ErrIndexNotFound, q.Index, err)
		}
		return nil, err
	}
	defer cursor.Close(ctx)

	var snapshots []*Snapshot
	for cursor.Next(ctx) {
		raw := make(bson.Raw, len(cursor.Current))
		copy(raw, cursor.Current)
		key, _ := raw.Lookup("_id").StringValueOK()
		snapshots = append(snapshots, &Snapshot{Key: key, Exists: true, raw: raw})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// isBadHint 索引不存在時 mongod 回傳 BadValue(2)，訊息含 hint
func isBadHint(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		return se.HasErrorCode(2) || se.HasErrorMessage("hint")
	}
	return false
}

// RunTransaction 交由 driver 的 WithTransaction 處理 TransientTransactionError 重試
func (s *MongoStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessionContext mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessionContext, &mongoTx{store: s, ctx: sessionContext})
	})
	return err
}

func (s *MongoStore) EnsureIndexes(ctx context.Context, collection core.Collection, indexes []Index) error {
	if len(indexes) == 0 {
		return nil
	}
	models := make([]mongo.IndexModel, 0, len(indexes))
	for _, index := range indexes {
		keys := bson.D{}
		for _, field := range index.Fields {
			direction := 1
			if field.Descending {
				direction = -1
			}
			keys = append(keys, bson.E{Key: field.Name, Value: direction})
		}
		models = append(models, mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetName(index.Name),
		})
	}
	_, err := s.db.Collection(string(collection)).Indexes().CreateMany(ctx, models)
	return err
}

type mongoTx struct {
	store *MongoStore
	ctx   mongo.SessionContext
}

func (tx *mongoTx) Get(collection core.Collection, key string) (*Snapshot, error) {
	return tx.store.get(tx.ctx, collection, key)
}

func (tx *mongoTx) Set(collection core.Collection, key string, data any, opts ...SetOption) error {
	return tx.store.set(tx.ctx, collection, key, data, applySetOptions(opts))
}

package store

import (
	"context"

	"github.com/deppfellow/rentals-api/internal/config"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore keeps each resource in its own MongoDB collection. Identifiers
// are ObjectIDs rendered as hex strings.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to MongoDB and pings the primary.
func NewMongoStore(ctx context.Context, cfg config.MongoConfig) (*MongoStore, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongo")
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "pinging mongo")
	}

	return &MongoStore{client: client, db: client.Database(cfg.Database)}, nil
}

// NewMongoStoreFromDatabase wraps an existing database handle.
func NewMongoStoreFromDatabase(db *mongo.Database) *MongoStore {
	return &MongoStore{client: db.Client(), db: db}
}

func (s *MongoStore) Name() string { return "mongo" }

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Document{}, ErrNotFound
	}

	var raw bson.M
	err = s.db.Collection(collection).FindOne(ctx, bson.M{"_id": oid}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, errors.Wrapf(err, "finding document in '%s'", collection)
	}

	delete(raw, "_id")
	return Document{ID: id, Fields: fromBSON(raw)}, nil
}

func (s *MongoStore) Insert(ctx context.Context, collection string, fields Fields) (Document, error) {
	oid := primitive.NewObjectID()

	doc := bson.M{}
	for k, v := range fields {
		doc[k] = v
	}
	doc["_id"] = oid

	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return Document{}, errors.Wrapf(err, "inserting document into '%s'", collection)
	}

	stored := cloneFields(fields)
	delete(stored, "_id")

	return Document{ID: oid.Hex(), Fields: stored}, nil
}

func (s *MongoStore) Merge(ctx context.Context, collection, id string, fields Fields) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	set := bson.M{}
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		set[k] = v
	}
	if len(set) == 0 {
		// $set rejects an empty document
		_, err := s.Get(ctx, collection, id)
		return err
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return errors.Wrapf(err, "updating document in '%s'", collection)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errors.Wrapf(err, "deleting document from '%s'", collection)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// fromBSON converts driver container types back into plain maps and slices
// so documents serialize the same way regardless of backend.
func fromBSON(raw bson.M) Fields {
	out := make(Fields, len(raw))
	for k, v := range raw {
		out[k] = fromBSONValue(v)
	}
	return out
}

func fromBSONValue(v interface{}) interface{} {
	switch val := v.(type) {
	case bson.M:
		return map[string]interface{}(fromBSON(val))
	case bson.D:
		return map[string]interface{}(fromBSON(val.Map()))
	case bson.A:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			out[i] = fromBSONValue(inner)
		}
		return out
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case primitive.ObjectID:
		return val.Hex()
	default:
		return val
	}
}

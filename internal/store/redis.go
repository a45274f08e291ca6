package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// idField is written into every hash so a document with no fields still
// exists as a key. It is never returned to callers.
const idField = "__id"

// mergeScript sets the given hash fields only if the key already exists,
// making existence check and write a single atomic step.
var mergeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return 1
`)

// RedisStore keeps each document in its own hash, one JSON-encoded value
// per field, under "<prefix>:<collection>:<id>".
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore wraps a connected client. The client is owned by the caller.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "rentals"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) key(collection, id string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, collection, id)
}

func (s *RedisStore) Get(ctx context.Context, collection, id string) (Document, error) {
	raw, err := s.client.HGetAll(ctx, s.key(collection, id)).Result()
	if err != nil {
		return Document{}, errors.Wrapf(err, "reading document from '%s'", collection)
	}
	if len(raw) == 0 {
		return Document{}, ErrNotFound
	}

	fields := make(Fields, len(raw))
	for k, v := range raw {
		if k == idField {
			continue
		}
		value, err := decodeValue([]byte(v))
		if err != nil {
			return Document{}, errors.Wrapf(err, "decoding field '%s' of '%s'", k, collection)
		}
		fields[k] = value
	}

	return Document{ID: id, Fields: fields}, nil
}

func (s *RedisStore) Insert(ctx context.Context, collection string, fields Fields) (Document, error) {
	id := uuid.NewString()

	values, err := encodeHash(fields)
	if err != nil {
		return Document{}, err
	}
	values = append(values, idField, id)

	if err := s.client.HSet(ctx, s.key(collection, id), values...).Err(); err != nil {
		return Document{}, errors.Wrapf(err, "inserting document into '%s'", collection)
	}

	return Document{ID: id, Fields: cloneFields(fields)}, nil
}

func (s *RedisStore) Merge(ctx context.Context, collection, id string, fields Fields) error {
	values, err := encodeHash(fields)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		_, err := s.Get(ctx, collection, id)
		return err
	}

	updated, err := mergeScript.Run(ctx, s.client, []string{s.key(collection, id)}, values...).Int()
	if err != nil {
		return errors.Wrapf(err, "merging document in '%s'", collection)
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, collection, id string) error {
	removed, err := s.client.Del(ctx, s.key(collection, id)).Result()
	if err != nil {
		return errors.Wrapf(err, "deleting document from '%s'", collection)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op; the client belongs to the server.
func (s *RedisStore) Close(context.Context) error { return nil }

func encodeHash(fields Fields) ([]interface{}, error) {
	values := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		if k == idField {
			continue
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding field '%s'", k)
		}
		values = append(values, k, string(encoded))
	}
	return values, nil
}

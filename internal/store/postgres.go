package store

import (
	"context"
	"encoding/json"

	"github.com/deppfellow/rentals-api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// PostgresStore keeps every collection in the single `documents` table
// created by the database migrations, one jsonb value per document.
type PostgresStore struct {
	db *database.Database
}

// NewPostgresStore wraps an open database pool.
func NewPostgresStore(db *database.Database) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Name() string { return "postgres" }

const (
	selectDocumentSQL = `SELECT data FROM documents WHERE collection = $1 AND id = $2`
	insertDocumentSQL = `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)`
	mergeDocumentSQL  = `UPDATE documents SET data = data || $3::jsonb, updated_at = now() WHERE collection = $1 AND id = $2`
	deleteDocumentSQL = `DELETE FROM documents WHERE collection = $1 AND id = $2`
)

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return Document{}, ErrNotFound
	}

	var data []byte
	err = s.db.Pool.QueryRow(ctx, selectDocumentSQL, collection, docID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, errors.Wrapf(err, "selecting document from '%s'", collection)
	}

	fields, err := DecodeFields(data)
	if err != nil {
		return Document{}, errors.Wrapf(err, "decoding document from '%s'", collection)
	}

	return Document{ID: id, Fields: fields}, nil
}

func (s *PostgresStore) Insert(ctx context.Context, collection string, fields Fields) (Document, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return Document{}, errors.Wrap(err, "encoding document")
	}

	docID := uuid.New()
	if _, err := s.db.Pool.Exec(ctx, insertDocumentSQL, collection, docID, string(data)); err != nil {
		return Document{}, errors.Wrapf(err, "inserting document into '%s'", collection)
	}

	return Document{ID: docID.String(), Fields: cloneFields(fields)}, nil
}

func (s *PostgresStore) Merge(ctx context.Context, collection, id string, fields Fields) error {
	docID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	patch, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrap(err, "encoding document patch")
	}

	tag, err := s.db.Pool.Exec(ctx, mergeDocumentSQL, collection, docID, string(patch))
	if err != nil {
		return errors.Wrapf(err, "merging document in '%s'", collection)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	docID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	tag, err := s.db.Pool.Exec(ctx, deleteDocumentSQL, collection, docID)
	if err != nil {
		return errors.Wrapf(err, "deleting document from '%s'", collection)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Pool.Ping(ctx)
}

func (s *PostgresStore) Close(context.Context) error {
	return s.db.Close()
}

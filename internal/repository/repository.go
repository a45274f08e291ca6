// Package repository handles all interactions with the document store.
//
// A DocumentRepository is bound to one collection. It bounds every store
// round trip with the configured operation timeout, classifies driver errors
// through storeerr and counts each call in the store metrics, so the service
// layer never sees backend specifics.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/deppfellow/rentals-api/internal/lib/metrics"
	"github.com/deppfellow/rentals-api/internal/store"
	"github.com/deppfellow/rentals-api/internal/storeerr"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	opGet    = "get"
	opInsert = "insert"
	opMerge  = "merge"
	opDelete = "delete"
)

// DocumentRepository reads and writes documents of a single collection.
type DocumentRepository struct {
	store      store.Store
	collection string
	timeout    time.Duration
	metrics    *metrics.Metrics
}

func NewDocumentRepository(s store.Store, collection string, timeout time.Duration, m *metrics.Metrics) *DocumentRepository {
	return &DocumentRepository{
		store:      s,
		collection: collection,
		timeout:    timeout,
		metrics:    m,
	}
}

func (r *DocumentRepository) Collection() string {
	return r.collection
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (store.Document, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc, err := r.store.Get(ctx, r.collection, id)
	return doc, r.done(ctx, opGet, id, err)
}

func (r *DocumentRepository) Create(ctx context.Context, fields store.Fields) (store.Document, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc, err := r.store.Insert(ctx, r.collection, fields)
	return doc, r.done(ctx, opInsert, doc.ID, err)
}

func (r *DocumentRepository) Merge(ctx context.Context, id string, fields store.Fields) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.done(ctx, opMerge, id, r.store.Merge(ctx, r.collection, id, fields))
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.done(ctx, opDelete, id, r.store.Delete(ctx, r.collection, id))
}

func (r *DocumentRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// done records the outcome of one store call and wraps driver errors.
// store.ErrNotFound is passed through untouched for the service to map.
func (r *DocumentRepository) done(ctx context.Context, op, id string, err error) error {
	backend := r.store.Name()

	switch {
	case err == nil:
		r.metrics.ObserveStoreOperation(backend, r.collection, op, "ok")
		return nil
	case errors.Is(err, store.ErrNotFound):
		r.metrics.ObserveStoreOperation(backend, r.collection, op, "not_found")
		return err
	}

	wrapped := storeerr.Wrap(err, backend, op, r.collection)
	code := storeerr.ErrCode(wrapped)
	r.metrics.ObserveStoreOperation(backend, r.collection, op, string(code))

	zerolog.Ctx(ctx).Error().
		Err(err).
		Str("store", backend).
		Str("collection", r.collection).
		Str("operation", op).
		Str("document_id", id).
		Str("store_error_code", string(code)).
		Msg("store operation failed")

	return pkgerrors.WithStack(wrapped)
}

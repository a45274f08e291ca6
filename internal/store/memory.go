package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps documents in process memory. Used for local
// development and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Fields
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Fields),
	}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fields, ok := m.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Fields: cloneFields(fields)}, nil
}

func (m *MemoryStore) Insert(_ context.Context, collection string, fields Fields) (Document, error) {
	id := uuid.NewString()
	stored := cloneFields(fields)

	m.mu.Lock()
	defer m.mu.Unlock()

	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string]Fields)
		m.collections[collection] = docs
	}
	docs[id] = stored

	return Document{ID: id, Fields: cloneFields(stored)}, nil
}

func (m *MemoryStore) Merge(_ context.Context, collection, id string, fields Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		stored[k] = cloneValue(v)
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.collections[collection], id)
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close(context.Context) error { return nil }

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deppfellow/rentals-api/internal/lib/metrics"
	"github.com/deppfellow/rentals-api/internal/resource"
	"github.com/deppfellow/rentals-api/internal/store"
	"github.com/deppfellow/rentals-api/internal/storeerr"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowStore blocks every call until the context is done.
type slowStore struct {
	store.Store
}

func (slowStore) Name() string { return "slow" }

func (slowStore) Get(ctx context.Context, _, _ string) (store.Document, error) {
	<-ctx.Done()
	return store.Document{}, ctx.Err()
}

func TestRepositoriesCoverRegistry(t *testing.T) {
	registry := resource.Default()
	repos := NewRepositories(store.NewMemoryStore(), registry, time.Second, metrics.New())

	require.Len(t, repos.Documents, len(registry.All()))
	for _, def := range registry.All() {
		assert.Equal(t, def.Collection(), repos.For(def).Collection())
	}
}

func TestDocumentRepositoryRoundTrip(t *testing.T) {
	m := metrics.New()
	repo := NewDocumentRepository(store.NewMemoryStore(), "categorias", time.Second, m)
	ctx := context.Background()

	doc, err := repo.Create(ctx, store.Fields{"nombre": "Elevación", "descripcion": "Plataformas"})
	require.NoError(t, err)

	require.NoError(t, repo.Merge(ctx, doc.ID, store.Fields{"descripcion": "Plataformas elevadoras"}))

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plataformas elevadoras", got.Fields["descripcion"])
	assert.Equal(t, "Elevación", got.Fields["nombre"])

	require.NoError(t, repo.Delete(ctx, doc.ID))

	_, err = repo.GetByID(ctx, doc.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// insert, merge, get ok, delete, get not_found
	series, err := testutil.GatherAndCount(m.Registry(), "rentals_store_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 5, series)
}

func TestDocumentRepositoryTimeout(t *testing.T) {
	repo := NewDocumentRepository(slowStore{}, "usuarios", 10*time.Millisecond, nil)

	_, err := repo.GetByID(context.Background(), "abc")
	require.Error(t, err)
	assert.False(t, errors.Is(err, store.ErrNotFound))
	assert.Equal(t, storeerr.Timeout, storeerr.ErrCode(err))
}

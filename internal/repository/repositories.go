package repository

import (
	"time"

	"github.com/deppfellow/rentals-api/internal/lib/metrics"
	"github.com/deppfellow/rentals-api/internal/resource"
	"github.com/deppfellow/rentals-api/internal/store"
)

// Repositories is a container for all repository instances, keyed by the
// resource path they serve.
type Repositories struct {
	Documents map[string]*DocumentRepository
}

// NewRepositories binds one DocumentRepository per registered resource to the
// shared store handle.
func NewRepositories(s store.Store, registry *resource.Registry, timeout time.Duration, m *metrics.Metrics) *Repositories {
	docs := make(map[string]*DocumentRepository, len(registry.All()))
	for _, def := range registry.All() {
		docs[def.Path] = NewDocumentRepository(s, def.Collection(), timeout, m)
	}

	return &Repositories{Documents: docs}
}

// For returns the repository of a registered resource.
func (r *Repositories) For(def *resource.Definition) *DocumentRepository {
	return r.Documents[def.Path]
}

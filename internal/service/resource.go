package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/deppfellow/rentals-api/internal/errs"
	"github.com/deppfellow/rentals-api/internal/repository"
	"github.com/deppfellow/rentals-api/internal/resource"
	"github.com/deppfellow/rentals-api/internal/store"
	"github.com/rs/zerolog"
)

// CreateHook runs after a document was stored. Hooks cannot fail the request.
type CreateHook func(ctx context.Context, def *resource.Definition, doc store.Document)

// ResourceService implements the four document operations for one resource.
type ResourceService struct {
	def   *resource.Definition
	repo  *repository.DocumentRepository
	hooks []CreateHook
	now   func() time.Time
}

func NewResourceService(def *resource.Definition, repo *repository.DocumentRepository, hooks ...CreateHook) *ResourceService {
	return &ResourceService{
		def:   def,
		repo:  repo,
		hooks: hooks,
		now:   time.Now,
	}
}

func (s *ResourceService) Definition() *resource.Definition {
	return s.def
}

// Create validates the payload, fills creation defaults and stores it under a
// store-assigned id. A client supplied "id" is dropped.
func (s *ResourceService) Create(ctx context.Context, payload store.Fields) (store.Document, error) {
	fields := s.fields(payload)

	if err := s.def.Validate(fields); err != nil {
		return store.Document{}, err
	}

	s.def.ApplyDefaults(fields, s.now())

	doc, err := s.repo.Create(ctx, fields)
	if err != nil {
		return store.Document{}, err
	}

	s.logger(ctx).Info().
		Str("document_id", doc.ID).
		Msg("document created")

	for _, hook := range s.hooks {
		hook(ctx, s.def, doc)
	}

	return doc, nil
}

func (s *ResourceService) Get(ctx context.Context, id string) (store.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return store.Document{}, s.mapNotFound(err)
	}
	return doc, nil
}

// Update checks existence first, then runs the create validator and merges
// the named fields into the stored document.
func (s *ResourceService) Update(ctx context.Context, id string, payload store.Fields) (string, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return "", s.mapNotFound(err)
	}

	fields := s.fields(payload)
	if err := s.def.Validate(fields); err != nil {
		return "", err
	}

	// the document may have been deleted since the existence check
	if err := s.repo.Merge(ctx, id, fields); err != nil {
		return "", s.mapNotFound(err)
	}

	s.logger(ctx).Info().
		Str("document_id", id).
		Strs("fields", fieldNames(fields)).
		Msg("document updated")

	return s.def.UpdatedMessage(), nil
}

func (s *ResourceService) Delete(ctx context.Context, id string) (string, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return "", s.mapNotFound(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return "", s.mapNotFound(err)
	}

	s.logger(ctx).Info().
		Str("document_id", id).
		Msg("document deleted")

	return s.def.DeletedMessage(), nil
}

func (s *ResourceService) mapNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		code := s.def.NotFoundCode()
		return errs.NewNotFoundError(s.def.NotFoundMessage(), true, &code)
	}
	return err
}

// identifierKeys are owned by the store and never taken from a payload.
var identifierKeys = map[string]bool{"id": true, "_id": true}

// fields copies the payload without the identifier keys.
func (s *ResourceService) fields(payload store.Fields) store.Fields {
	out := make(store.Fields, len(payload))
	for k, v := range payload {
		if identifierKeys[k] {
			continue
		}
		out[k] = v
	}
	return out
}

func (s *ResourceService) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().
		Str("resource", s.def.Path).
		Logger()
	return &l
}

func fieldNames(fields store.Fields) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

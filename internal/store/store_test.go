package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// StoreSuite checks the behaviour every backend must share.
type StoreSuite struct {
	suite.Suite
	ctx      context.Context
	newStore func(t *testing.T) Store
	store    Store
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore(s.T())
}

func rental() Fields {
	return Fields{
		"usuario":     map[string]interface{}{"id": "u1", "nombre": "Ana"},
		"maquina":     map[string]interface{}{"id": "m1", "nombre": "Excavadora"},
		"fechaInicio": "2024-05-01T00:00:00Z",
		"fechaFin":    "2024-05-10T00:00:00Z",
		"estado":      "activo",
		"precio":      int64(0),
		"pagado":      false,
	}
}

func (s *StoreSuite) TestInsertThenGet() {
	doc, err := s.store.Insert(s.ctx, "alquileres", rental())
	s.Require().NoError(err)
	s.NotEmpty(doc.ID)
	s.Equal(rental(), doc.Fields)

	got, err := s.store.Get(s.ctx, "alquileres", doc.ID)
	s.Require().NoError(err)
	s.Equal(doc.ID, got.ID)
	s.Equal(rental(), got.Fields)
}

func (s *StoreSuite) TestInsertAssignsDistinctIDs() {
	a, err := s.store.Insert(s.ctx, "categorias", Fields{"nombre": "a"})
	s.Require().NoError(err)
	b, err := s.store.Insert(s.ctx, "categorias", Fields{"nombre": "b"})
	s.Require().NoError(err)
	s.NotEqual(a.ID, b.ID)
}

func (s *StoreSuite) TestCollectionsAreIndependent() {
	doc, err := s.store.Insert(s.ctx, "usuarios", Fields{"nombre": "Ana"})
	s.Require().NoError(err)

	_, err = s.store.Get(s.ctx, "trabajadores", doc.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreSuite) TestGetUnknown() {
	_, err := s.store.Get(s.ctx, "usuarios", "does-not-exist")
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreSuite) TestMergeKeepsOtherFields() {
	doc, err := s.store.Insert(s.ctx, "alquileres", rental())
	s.Require().NoError(err)

	s.Require().NoError(s.store.Merge(s.ctx, "alquileres", doc.ID, Fields{"estado": "finalizado", "notas": "ok"}))

	got, err := s.store.Get(s.ctx, "alquileres", doc.ID)
	s.Require().NoError(err)

	expected := rental()
	expected["estado"] = "finalizado"
	expected["notas"] = "ok"
	s.Equal(expected, got.Fields)
}

func (s *StoreSuite) TestMergeUnknown() {
	err := s.store.Merge(s.ctx, "alquileres", "does-not-exist", Fields{"estado": "x"})
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreSuite) TestDeleteTwice() {
	doc, err := s.store.Insert(s.ctx, "pagos", Fields{"monto": float64(150)})
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(s.ctx, "pagos", doc.ID))

	_, err = s.store.Get(s.ctx, "pagos", doc.ID)
	s.ErrorIs(err, ErrNotFound)
	s.ErrorIs(s.store.Delete(s.ctx, "pagos", doc.ID), ErrNotFound)
}

func (s *StoreSuite) TestCallerMutationDoesNotLeak() {
	input := rental()
	doc, err := s.store.Insert(s.ctx, "alquileres", input)
	s.Require().NoError(err)

	input["estado"] = "mutated"
	input["usuario"].(map[string]interface{})["nombre"] = "mutated"

	got, err := s.store.Get(s.ctx, "alquileres", doc.ID)
	s.Require().NoError(err)
	s.Equal("activo", got.Fields["estado"])
	s.Equal("Ana", got.Fields["usuario"].(map[string]interface{})["nombre"])
}

func (s *StoreSuite) TestPing() {
	s.NoError(s.store.Ping(s.ctx))
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func(*testing.T) Store { return NewMemoryStore() }})
}

func TestRedisStore(t *testing.T) {
	suite.Run(t, &StoreSuite{newStore: func(t *testing.T) Store {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return NewRedisStore(client, "test")
	}})
}

func TestRedisStoreHidesMarkerField(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedisStore(client, "")
	doc, err := s.Insert(context.Background(), "usuarios", Fields{"nombre": "Ana"})
	require.NoError(t, err)

	assert.True(t, mr.Exists("rentals:usuarios:"+doc.ID))
	assert.Equal(t, `"Ana"`, mr.HGet("rentals:usuarios:"+doc.ID, "nombre"))

	got, err := s.Get(context.Background(), "usuarios", doc.ID)
	require.NoError(t, err)
	assert.NotContains(t, got.Fields, idField)
}

func TestDocumentMarshalJSON(t *testing.T) {
	doc := Document{ID: "abc", Fields: Fields{"nombre": "Ana", "id": "ignored"}}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "abc", out["id"])
	assert.Equal(t, "Ana", out["nombre"])
}

package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/rentals-api/internal/config"
	"github.com/deppfellow/rentals-api/internal/handler"
	"github.com/deppfellow/rentals-api/internal/repository"
	"github.com/deppfellow/rentals-api/internal/resource"
	"github.com/deppfellow/rentals-api/internal/server"
	"github.com/deppfellow/rentals-api/internal/service"
	"github.com/deppfellow/rentals-api/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RouterSuite struct {
	suite.Suite
	srv    *server.Server
	router *echo.Echo
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func testConfig() *config.Config {
	return &config.Config{
		Primary: config.Primary{Env: "test"},
		Server: config.ServerConfig{
			Port:               "0",
			ReadTimeout:        5,
			WriteTimeout:       5,
			IdleTimeout:        5,
			CORSAllowedOrigins: []string{"*"},
			StaticDir:          "../../static",
		},
		Store: config.StoreConfig{
			Driver:           config.DriverMemory,
			OperationTimeout: time.Second,
		},
		Observability: config.DefaultObservabilityConfig(),
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) (*server.Server, *echo.Echo) {
	logger := zerolog.Nop()
	return newTestRouterWith(t, cfg, &logger, nil)
}

// newTestRouterWith builds the router with a custom logger and, when st is
// not nil, a replacement document store.
func newTestRouterWith(t *testing.T, cfg *config.Config, logger *zerolog.Logger, st store.Store) (*server.Server, *echo.Echo) {
	srv, err := server.New(context.Background(), cfg, logger, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	if st != nil {
		srv.Store = st
	}

	repos := repository.NewRepositories(srv.Store, srv.Registry, cfg.Store.OperationTimeout, srv.Metrics)
	services := service.NewServices(srv, repos)

	return srv, NewRouter(srv, handler.NewHandlers(srv, services))
}

func (s *RouterSuite) SetupTest() {
	s.srv, s.router = newTestRouter(s.T(), testConfig())
}

func (s *RouterSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			data, err := json.Marshal(body)
			s.Require().NoError(err)
			raw = string(data)
		}
		reader = bytes.NewReader([]byte(raw))
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) decode(rec *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *RouterSuite) create(path string, payload map[string]interface{}) map[string]interface{} {
	rec := s.do(http.MethodPost, "/"+path, payload)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	return s.decode(rec)
}

func (s *RouterSuite) TestWelcome() {
	rec := s.do(http.MethodGet, "/", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Bienvenido a la API de alquiler de maquinaria", rec.Body.String())
	s.Contains(rec.Header().Get(echo.HeaderContentType), echo.MIMETextPlain)
}

func (s *RouterSuite) TestUserLifecycle() {
	created := s.create("usuarios", map[string]interface{}{
		"nombre": "Ana",
		"correo": "ana@x.com",
		"rol":    "admin",
	})

	id, ok := created["id"].(string)
	s.Require().True(ok)
	s.NotEmpty(id)
	s.Equal("Ana", created["nombre"])
	s.Equal("ana@x.com", created["correo"])
	s.Equal("admin", created["rol"])

	fecha, ok := created["fechaRegistro"].(string)
	s.Require().True(ok)
	_, err := time.Parse(time.RFC3339, fecha)
	s.NoError(err)

	rec := s.do(http.MethodGet, "/usuarios/"+id, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(created, s.decode(rec))

	rec = s.do(http.MethodDelete, "/usuarios/"+id, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("Usuario eliminado correctamente", s.decode(rec)["message"])

	rec = s.do(http.MethodGet, "/usuarios/"+id, nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("Usuario no encontrado", s.decode(rec)["message"])

	rec = s.do(http.MethodDelete, "/usuarios/"+id, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *RouterSuite) TestCreateReadEveryResource() {
	for _, def := range s.srv.Registry.All() {
		created := s.create(def.Path, def.Example)

		id, _ := created["id"].(string)
		s.Require().NotEmpty(id, def.Path)

		rec := s.do(http.MethodGet, "/"+def.Path+"/"+id, nil)
		s.Require().Equal(http.StatusOK, rec.Code, def.Path)

		got := s.decode(rec)
		for k := range def.Example {
			s.Contains(got, k, "%s.%s", def.Path, k)
		}
		s.Equal(created, got, def.Path)
	}
}

func (s *RouterSuite) TestMissingFieldsEveryResource() {
	for _, def := range s.srv.Registry.All() {
		payload := map[string]interface{}{}
		for k, v := range def.Example {
			payload[k] = v
		}
		delete(payload, def.Required[0].Name)

		rec := s.do(http.MethodPost, "/"+def.Path, payload)
		s.Require().Equal(http.StatusBadRequest, rec.Code, def.Path)

		body := s.decode(rec)
		s.Equal(def.MissingFieldsMessage(), body["message"], def.Path)
		s.Equal("MISSING_REQUIRED_FIELDS", body["code"], def.Path)
	}
}

func (s *RouterSuite) TestUnknownIDEveryResource() {
	for _, def := range s.srv.Registry.All() {
		for _, method := range []string{http.MethodGet, http.MethodDelete} {
			rec := s.do(method, "/"+def.Path+"/does-not-exist", nil)
			s.Equal(http.StatusNotFound, rec.Code, "%s %s", method, def.Path)

			body := s.decode(rec)
			s.Equal(def.NotFoundMessage(), body["message"])
			s.Equal(def.NotFoundCode(), body["code"])
		}

		rec := s.do(http.MethodPut, "/"+def.Path+"/does-not-exist", def.Example)
		s.Equal(http.StatusNotFound, rec.Code, def.Path)
	}
}

func (s *RouterSuite) TestUpdateMergesFields() {
	created := s.create("maquinas", resource.Maquinas.Example)
	id := created["id"].(string)

	rec := s.do(http.MethodPut, "/maquinas/"+id, map[string]interface{}{
		"nombre":      "Retroexcavadora",
		"descripcion": "Modelo 2024",
		"precio":      1800.0,
		"distribuidor": map[string]interface{}{
			"id":     "d1",
			"nombre": "Maquinarias SA",
		},
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(resource.Maquinas.UpdatedMessage(), s.decode(rec)["message"])

	rec = s.do(http.MethodGet, "/maquinas/"+id, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	got := s.decode(rec)
	s.Equal("Retroexcavadora", got["nombre"])
	s.Equal(1800.0, got["precio"])
	s.Equal(id, got["id"])
}

func (s *RouterSuite) TestUpdateKeepsUnnamedFields() {
	created := s.create("ubicaciones", map[string]interface{}{
		"nombre":    "Depósito",
		"direccion": "Calle 1",
		"latitud":   10.5,
		"longitud":  -3.2,
		"notas":     "portón azul",
	})
	id := created["id"].(string)

	rec := s.do(http.MethodPut, "/ubicaciones/"+id, map[string]interface{}{
		"nombre":    "Depósito norte",
		"direccion": "Calle 1",
		"latitud":   10.5,
		"longitud":  -3.2,
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	got := s.decode(s.do(http.MethodGet, "/ubicaciones/"+id, nil))
	s.Equal("Depósito norte", got["nombre"])
	s.Equal("portón azul", got["notas"])
}

func (s *RouterSuite) TestReviewRatingBoundaries() {
	review := func(calificacion float64) map[string]interface{} {
		return map[string]interface{}{
			"usuario":      map[string]interface{}{"id": "u1", "nombre": "Ana"},
			"producto":     map[string]interface{}{"id": "m1", "nombre": "Excavadora"},
			"calificacion": calificacion,
			"comentario":   "",
		}
	}

	for _, rating := range []float64{0, 6} {
		rec := s.do(http.MethodPost, "/resenas", review(rating))
		s.Equal(http.StatusBadRequest, rec.Code, "rating %v", rating)
		s.Equal("La calificación debe estar entre 1 y 5", s.decode(rec)["message"])
	}

	var id string
	for _, rating := range []float64{1, 5} {
		created := s.create("resenas", review(rating))
		id = created["id"].(string)
	}

	for _, rating := range []float64{0, 6} {
		rec := s.do(http.MethodPut, "/resenas/"+id, review(rating))
		s.Equal(http.StatusBadRequest, rec.Code, "update rating %v", rating)
	}

	rec := s.do(http.MethodPut, "/resenas/"+id, review(1))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestLocationZeroLongitude() {
	created := s.create("ubicaciones", map[string]interface{}{
		"nombre":    "Greenwich",
		"direccion": "Blackheath Ave",
		"latitud":   51.4779,
		"longitud":  0,
	})

	s.Equal(0.0, created["longitud"])
}

func (s *RouterSuite) TestClientIDIsIgnored() {
	created := s.create("categorias", map[string]interface{}{
		"id":          "mine",
		"nombre":      "Pesada",
		"descripcion": "Maquinaria pesada",
	})

	s.NotEqual("mine", created["id"])
}

func (s *RouterSuite) TestMalformedJSON() {
	rec := s.do(http.MethodPost, "/usuarios", `{"nombre": "Ana",`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("El cuerpo de la petición no es un JSON válido", s.decode(rec)["message"])
}

func (s *RouterSuite) TestNonObjectBody() {
	rec := s.do(http.MethodPost, "/usuarios", `["Ana"]`)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterSuite) TestUnknownRoute() {
	rec := s.do(http.MethodGet, "/no-existe", nil)

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("Ruta no encontrada", s.decode(rec)["message"])
}

func (s *RouterSuite) TestStatus() {
	rec := s.do(http.MethodGet, "/status", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	body := s.decode(rec)
	s.Equal("healthy", body["status"])
	s.Equal("memory", body["store"])

	checks, ok := body["checks"].(map[string]interface{})
	s.Require().True(ok)
	s.Contains(checks, "store")
	s.NotContains(checks, "redis")
}

func (s *RouterSuite) TestOpenAPIDocument() {
	rec := s.do(http.MethodGet, "/openapi.json", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	body := s.decode(rec)
	s.Equal("3.0.3", body["openapi"])

	paths, ok := body["paths"].(map[string]interface{})
	s.Require().True(ok)
	for _, def := range s.srv.Registry.All() {
		s.Contains(paths, "/"+def.Path)
		s.Contains(paths, "/"+def.Path+"/{id}")
	}
}

func (s *RouterSuite) TestDocsUI() {
	rec := s.do(http.MethodGet, "/docs", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("no-cache", rec.Header().Get("Cache-Control"))
	s.Contains(rec.Body.String(), "/openapi.json")
}

func (s *RouterSuite) TestMetricsExposeRequests() {
	s.do(http.MethodGet, "/usuarios/missing", nil)

	rec := s.do(http.MethodGet, "/metrics", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	body := rec.Body.String()
	s.Contains(body, `rentals_http_requests_total{code="404",method="GET",route="/usuarios/:id"} 1`)
	s.Contains(body, "rentals_store_operations_total")
	s.NotContains(body, `route="/metrics"`)
}

func (s *RouterSuite) TestRequestIDHeader() {
	rec := s.do(http.MethodGet, "/", nil)

	s.NotEmpty(rec.Header().Get(echo.HeaderXRequestID))
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{
		Enabled:   true,
		Rate:      1,
		Burst:     1,
		ExpiresIn: time.Minute,
	}
	_, router := newTestRouter(t, cfg)

	get := func(path string) int {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, get("/"))
	assert.Equal(t, http.StatusTooManyRequests, get("/"))

	// /status is never limited
	assert.Equal(t, http.StatusOK, get("/status"))
	assert.Equal(t, http.StatusOK, get("/status"))
}

func TestRoutes(t *testing.T) {
	_, router := newTestRouter(t, testConfig())

	routes := Routes(router)

	var paths []string
	for _, r := range routes {
		paths = append(paths, r.Method+" "+r.Path)
	}
	joined := strings.Join(paths, "\n")

	for _, def := range resource.Default().All() {
		assert.Contains(t, joined, "POST /"+def.Path)
		assert.Contains(t, joined, "GET /"+def.Path+"/:id")
		assert.Contains(t, joined, "PUT /"+def.Path+"/:id")
		assert.Contains(t, joined, "DELETE /"+def.Path+"/:id")
	}
	assert.Contains(t, joined, "GET /status")
}

func (s *RouterSuite) TestPathIDWinsOverBodyID() {
	a := s.create("categorias", map[string]interface{}{"nombre": "A", "descripcion": "a"})
	b := s.create("categorias", map[string]interface{}{"nombre": "B", "descripcion": "b"})
	idA, idB := a["id"].(string), b["id"].(string)

	rec := s.do(http.MethodGet, "/categorias/"+idA, map[string]interface{}{"id": "nope"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("A", s.decode(rec)["nombre"])

	rec = s.do(http.MethodDelete, "/categorias/"+idA, map[string]interface{}{"id": idB})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/categorias/"+idA, nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/categorias/"+idB, nil).Code)
}

func (s *RouterSuite) TestUpdateIgnoresBodyID() {
	a := s.create("categorias", map[string]interface{}{"nombre": "A", "descripcion": "a"})
	b := s.create("categorias", map[string]interface{}{"nombre": "B", "descripcion": "b"})
	idA, idB := a["id"].(string), b["id"].(string)

	rec := s.do(http.MethodPut, "/categorias/"+idA, map[string]interface{}{
		"id":          idB,
		"nombre":      "A2",
		"descripcion": "a",
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	s.Equal("A2", s.decode(s.do(http.MethodGet, "/categorias/"+idA, nil))["nombre"])
	s.Equal("B", s.decode(s.do(http.MethodGet, "/categorias/"+idB, nil))["nombre"])
}

func (s *RouterSuite) TestLargeIntegersRoundTrip() {
	rec := s.do(http.MethodPost, "/trabajadores", `{"nombre":"Luis","puesto":"Operador","salario":9007199254740993,"fechaContratacion":"2024-01-15"}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	s.Contains(rec.Body.String(), `"salario":9007199254740993`)

	var created map[string]interface{}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))

	rec = s.do(http.MethodGet, "/trabajadores/"+created["id"].(string), nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"salario":9007199254740993`)
}

// brokenStore fails every call the way an unreachable backend does.
type brokenStore struct{}

var errConnRefused = errors.New("dial tcp 10.0.0.7:27017: connect: connection refused")

func (brokenStore) Name() string { return "broken" }

func (brokenStore) Get(context.Context, string, string) (store.Document, error) {
	return store.Document{}, errConnRefused
}

func (brokenStore) Insert(context.Context, string, store.Fields) (store.Document, error) {
	return store.Document{}, errConnRefused
}

func (brokenStore) Merge(context.Context, string, string, store.Fields) error { return errConnRefused }
func (brokenStore) Delete(context.Context, string, string) error             { return errConnRefused }
func (brokenStore) Ping(context.Context) error                               { return errConnRefused }
func (brokenStore) Close(context.Context) error                              { return nil }

func TestStoreFailureIsGeneric500(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	_, router := newTestRouterWith(t, testConfig(), &logger, brokenStore{})

	requests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/usuarios", `{"nombre":"Ana","correo":"ana@x.com","rol":"admin"}`},
		{http.MethodGet, "/usuarios/abc", ""},
		{http.MethodPut, "/usuarios/abc", `{"nombre":"Ana","correo":"ana@x.com","rol":"admin"}`},
		{http.MethodDelete, "/usuarios/abc", ""},
	}

	for _, tt := range requests {
		t.Run(tt.method, func(t *testing.T) {
			logs.Reset()

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusInternalServerError, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "INTERNAL_SERVER_ERROR", body["code"])
			assert.Equal(t, "Internal Server Error", body["message"])
			assert.NotContains(t, rec.Body.String(), "connection refused")
			assert.NotContains(t, rec.Body.String(), "27017")

			assert.Contains(t, logs.String(), "connection refused")
			assert.Contains(t, logs.String(), "store operation failed")
		})
	}
}

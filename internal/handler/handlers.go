package handler

import (
	"github.com/deppfellow/rentals-api/internal/server"
	"github.com/deppfellow/rentals-api/internal/service"
)

// Handlers groups every HTTP handler so the router receives a single object.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Root    *RootHandler

	// Resources holds one handler per registered resource, in registry order.
	Resources []*ResourceHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	resources := make([]*ResourceHandler, 0, len(s.Registry.All()))
	for _, def := range s.Registry.All() {
		resources = append(resources, NewResourceHandler(s, services.For(def)))
	}

	return &Handlers{
		Health:    NewHealthHandler(s),
		OpenAPI:   NewOpenAPIHandler(s),
		Root:      NewRootHandler(s),
		Resources: resources,
	}
}

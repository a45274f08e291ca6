package handler

import (
	"net/http"

	"github.com/deppfellow/rentals-api/internal/resource"
	"github.com/deppfellow/rentals-api/internal/server"
	"github.com/deppfellow/rentals-api/internal/service"
	"github.com/deppfellow/rentals-api/internal/store"
	"github.com/labstack/echo/v4"
)

// ResourceHandler exposes the CRUD operations of one resource.
type ResourceHandler struct {
	Handler
	service *service.ResourceService
}

func NewResourceHandler(s *server.Server, svc *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{
		Handler: NewHandler(s),
		service: svc,
	}
}

func (h *ResourceHandler) Definition() *resource.Definition {
	return h.service.Definition()
}

func (h *ResourceHandler) Create(c echo.Context, req *CreateDocumentRequest) (store.Document, error) {
	return h.service.Create(c.Request().Context(), req.Payload)
}

func (h *ResourceHandler) Get(c echo.Context, req *DocumentIDRequest) (store.Document, error) {
	return h.service.Get(c.Request().Context(), req.ID)
}

func (h *ResourceHandler) Update(c echo.Context, req *UpdateDocumentRequest) (MessageResponse, error) {
	msg, err := h.service.Update(c.Request().Context(), req.ID, req.Payload)
	return MessageResponse{Message: msg}, err
}

func (h *ResourceHandler) Delete(c echo.Context, req *DocumentIDRequest) (MessageResponse, error) {
	msg, err := h.service.Delete(c.Request().Context(), req.ID)
	return MessageResponse{Message: msg}, err
}

// Register mounts the four routes under /{path}.
func (h *ResourceHandler) Register(r *echo.Echo) {
	g := r.Group("/" + h.Definition().Path)

	g.POST("", Handle(h.Handler, h.Create, http.StatusCreated, NewCreateDocumentRequest))
	g.GET("/:id", Handle(h.Handler, h.Get, http.StatusOK, NewDocumentIDRequest))
	g.PUT("/:id", Handle(h.Handler, h.Update, http.StatusOK, NewUpdateDocumentRequest))
	g.DELETE("/:id", Handle(h.Handler, h.Delete, http.StatusOK, NewDocumentIDRequest))
}

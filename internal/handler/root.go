package handler

import (
	"net/http"

	"github.com/deppfellow/rentals-api/internal/server"
	"github.com/labstack/echo/v4"
)

const welcomeMessage = "Bienvenido a la API de alquiler de maquinaria"

type RootHandler struct {
	Handler
}

func NewRootHandler(s *server.Server) *RootHandler {
	return &RootHandler{Handler: NewHandler(s)}
}

// Welcome answers GET / with a plain text liveness message.
func (h *RootHandler) Welcome(c echo.Context) error {
	return c.String(http.StatusOK, welcomeMessage)
}

package router

import (
	"github.com/deppfellow/rentals-api/internal/handler"
	"github.com/deppfellow/rentals-api/internal/server"
	"github.com/labstack/echo/v4"
)

func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	r.GET("/", h.Root.Welcome)
	r.GET("/status", h.Health.CheckHealth)

	r.Static("/static", s.Config.Server.StaticDir)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
	r.GET("/openapi.json", h.OpenAPI.ServeSpec)

	r.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
}

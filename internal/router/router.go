// Package router builds the echo instance: global middleware, the global
// error handler, system routes and one route group per resource.
package router

import (
	"sort"

	"github.com/deppfellow/rentals-api/internal/handler"
	"github.com/deppfellow/rentals-api/internal/middleware"
	"github.com/deppfellow/rentals-api/internal/server"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Tracing.NewRelicMiddleware(),
		middleware.RequestID(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Metrics.Collect(),
		middlewares.RateLimit.Limiter(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, s, h)

	for _, resourceHandler := range h.Resources {
		resourceHandler.Register(router)
	}

	return router
}

// Route is one registered method and path.
type Route struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Routes lists the registered routes sorted by path, then method.
func Routes(router *echo.Echo) []Route {
	var routes []Route
	for _, r := range router.Routes() {
		routes = append(routes, Route{Method: r.Method, Path: r.Path})
	}

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})

	return routes
}

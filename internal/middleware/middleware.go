// Package middleware stores global middleware.
//
// These intercept requests to handle cross-cutting concerns such as request
// ids, request logging, New Relic tracing, Prometheus metrics, CORS, rate
// limiting and panic recovery, and provide the global error handler.
package middleware

// Package handler is the HTTP layer that sits between the router and the
// services.
//
// Handlers bind path params and JSON bodies, validate them through the
// validation package and call the matching service. Resource handlers are
// generic: one ResourceHandler per registered resource.
package handler

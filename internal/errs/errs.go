// Package errs defines the error shapes returned to API clients.
//
// Every non-2xx response leaving the service is an HTTPError serialized as
// JSON, so clients always see the same envelope whether the failure was a
// missing field, an unknown document or a broken store connection.
package errs

// Package service holds the resource operations.
//
// A ResourceService validates payloads against its resource definition,
// applies creation defaults and performs the existence checks that turn a
// missing document into a 404 before any write. Create hooks run after a
// successful insert and never fail the request.
package service

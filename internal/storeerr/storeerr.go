// Package storeerr classifies document store failures.
//
// Driver errors from MongoDB, PostgreSQL and Redis are reduced to a small
// set of codes so logs and metrics can tell a timeout from a dropped
// connection. Clients never see the difference: every store failure is a
// generic 500.
package storeerr

import (
	"fmt"
)

// Code categorises a store failure.
type Code string

const (
	Other       Code = "other"
	Unavailable Code = "unavailable"
	Timeout     Code = "timeout"
	Canceled    Code = "canceled"
	Duplicate   Code = "duplicate"
	Decode      Code = "decode"
)

// Error is a store failure annotated with where it happened.
type Error struct {
	Code       Code
	Backend    string
	Operation  string
	Collection string

	driverErr error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s on '%s' failed (%s): %v", e.Backend, e.Operation, e.Collection, e.Code, e.driverErr)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

package storeerr

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"

	"github.com/deppfellow/rentals-api/internal/errs"
	"github.com/deppfellow/rentals-api/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Wrap annotates err with the failing operation and its classification.
// nil and store.ErrNotFound are returned unchanged.
func Wrap(err error, backend, operation, collection string) error {
	if err == nil || errors.Is(err, store.ErrNotFound) {
		return err
	}

	var storeErr *Error
	if errors.As(err, &storeErr) {
		return err
	}

	return &Error{
		Code:       Classify(err),
		Backend:    backend,
		Operation:  operation,
		Collection: collection,
		driverErr:  err,
	}
}

// ErrCode reports the Code of a wrapped store error, or Other.
func ErrCode(err error) Code {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Code
	}
	return Other
}

// Classify inspects a raw driver error.
func Classify(err error) Code {
	switch {
	case errors.Is(err, context.Canceled):
		return Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout
	}

	if code, ok := classifyMongo(err); ok {
		return code
	}
	if code, ok := classifyPostgres(err); ok {
		return code
	}
	if errors.Is(err, redis.ErrClosed) {
		return Unavailable
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return Decode
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Timeout
		}
		return Unavailable
	}

	return Other
}

func classifyMongo(err error) (Code, bool) {
	switch {
	case mongo.IsTimeout(err):
		return Timeout, true
	case mongo.IsDuplicateKeyError(err):
		return Duplicate, true
	case mongo.IsNetworkError(err), errors.Is(err, mongo.ErrClientDisconnected):
		return Unavailable, true
	}
	return "", false
}

func classifyPostgres(err error) (Code, bool) {
	if pgconn.Timeout(err) {
		return Timeout, true
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}

	switch {
	case pgErr.Code == "23505":
		return Duplicate, true
	case pgErr.Code == "57014":
		return Timeout, true
	case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
		// connection exception, operator intervention (shutdown)
		return Unavailable, true
	case strings.HasPrefix(pgErr.Code, "22"):
		return Decode, true
	}
	return Other, true
}

// HandleError converts any error reaching the HTTP layer into an
// *errs.HTTPError. HTTP errors pass through, a bare store.ErrNotFound becomes
// a 404 and everything else a generic 500.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	if errors.Is(err, store.ErrNotFound) {
		return errs.NewNotFoundError("Recurso no encontrado", false, nil)
	}

	return errs.NewInternalServerError()
}

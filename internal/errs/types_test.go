package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	code := "USUARIO_NOT_FOUND"

	tests := []struct {
		name   string
		err    *HTTPError
		status int
		code   string
	}{
		{"bad request default code", NewBadRequestError("x", false, nil, nil, nil), http.StatusBadRequest, "BAD_REQUEST"},
		{"not found custom code", NewNotFoundError("x", true, &code), http.StatusNotFound, code},
		{"not found default code", NewNotFoundError("x", false, nil), http.StatusNotFound, "NOT_FOUND"},
		{"too many requests", NewTooManyRequestsError("x", "1s"), http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
		{"internal", NewInternalServerError(), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestInternalServerErrorHidesDetail(t *testing.T) {
	err := NewInternalServerError()
	assert.Equal(t, "Internal Server Error", err.Message)
	assert.False(t, err.Override)
}

func TestHTTPErrorIs(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NewNotFoundError("gone", false, nil))

	var target *HTTPError
	assert.True(t, errors.As(wrapped, &target))
	assert.True(t, errors.Is(wrapped, &HTTPError{}))
	assert.Equal(t, "gone", target.Message)
}

func TestWithMessageCopies(t *testing.T) {
	base := NewBadRequestError("original", true, nil, []FieldError{{Field: "nombre", Error: "es obligatorio"}}, nil)
	copied := base.WithMessage("changed")

	assert.Equal(t, "original", base.Message)
	assert.Equal(t, "changed", copied.Message)
	assert.Equal(t, base.Errors, copied.Errors)
	assert.Equal(t, base.Status, copied.Status)
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorString(t *testing.T) {
	withCause := &AppError{Code: "INTERNAL_ERROR", Message: "redis down", Err: fmt.Errorf("dial tcp")}
	assert.Equal(t, "INTERNAL_ERROR: redis down: dial tcp", withCause.Error())

	bare := &AppError{Code: "INVALID_INPUT", Message: "name is required"}
	assert.Equal(t, "INVALID_INPUT: name is required", bare.Error())
}

func TestConstructors_WrapSentinels(t *testing.T) {
	assert.True(t, errors.Is(NotFound("menu item", "x"), ErrNotFound))
	assert.True(t, errors.Is(InvalidInput("bad"), ErrInvalidInput))
	assert.True(t, errors.Is(Conflict("again"), ErrConflict))
	assert.True(t, errors.Is(Unavailable("CATALOG_UNAVAILABLE", "loading", nil), ErrServiceUnavail))
}

func TestUnavailable_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("CATALOG_UNAVAILABLE", "catalog is not loaded", cause)

	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.True(t, errors.Is(err, ErrServiceUnavail))
	assert.True(t, errors.Is(err, cause))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", InvalidInput("x"), http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("get: %w", ErrNotFound), http.StatusNotFound},
		{"conflict sentinel", ErrConflict, http.StatusConflict},
		{"unavailable sentinel", ErrServiceUnavail, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

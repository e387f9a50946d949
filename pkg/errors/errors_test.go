package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := NotFound("wishlist", "abc-123")
	assert.Contains(t, err.Error(), "NOT_FOUND")
	assert.Contains(t, err.Error(), "abc-123")
}

func TestAppError_Unwrap(t *testing.T) {
	assert.True(t, errors.Is(NotFound("item", "1"), ErrNotFound))
	assert.True(t, errors.Is(Forbidden("nope"), ErrForbidden))
	assert.True(t, errors.Is(InvariantViolation("rule"), ErrConflict))
	assert.True(t, errors.Is(Unavailable(errors.New("dial tcp")), ErrServiceUnavail))
}

func TestHTTPStatus_AppError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{NotFound("item", "1"), http.StatusNotFound},
		{AlreadyExists("user", "id", "u1"), http.StatusConflict},
		{InvalidInput("bad"), http.StatusBadRequest},
		{Unauthorized("no token"), http.StatusUnauthorized},
		{Forbidden("not owner"), http.StatusForbidden},
		{InvariantViolation("one reservation per wishlist"), http.StatusConflict},
		{Unavailable(errors.New("timeout")), http.StatusServiceUnavailable},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatus(tt.err), "error: %v", tt.err)
	}
}

func TestHTTPStatus_WrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("load wishlist: %w", ErrNotFound)
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))

	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestInvariantViolation_Message(t *testing.T) {
	err := InvariantViolation("owner cannot reserve own item")
	assert.Equal(t, "INVARIANT_VIOLATION", err.Code)
	assert.Equal(t, "owner cannot reserve own item", err.Message)
}

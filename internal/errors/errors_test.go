package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelMatching(t *testing.T) {
	err := NotFoundf("climber %q not found", "Maja")
	assert.True(t, stderrors.Is(err, ErrNotFound))
	assert.False(t, stderrors.Is(err, ErrConflict))

	// Matching survives wrapping.
	wrapped := fmt.Errorf("in handler: %w", err)
	assert.True(t, stderrors.Is(wrapped, ErrNotFound))
}

func TestWithCause(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := ErrUnavailable.WithCause(cause)

	assert.True(t, stderrors.Is(err, ErrUnavailable))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestWithDetails(t *testing.T) {
	err := ValidationWithDetails("validation failed", map[string]string{"name": "is required"})

	var appErr *Error
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, CodeValidation, appErr.Code)
	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["name"])
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("x").HTTPStatus())
	assert.Equal(t, http.StatusConflict, Conflict("x").HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, Validation("x").HTTPStatus())
	assert.Equal(t, http.StatusForbidden, Forbidden("x").HTTPStatus())
	assert.Equal(t, http.StatusServiceUnavailable, Unavailable("x").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Internal("x").HTTPStatus())
	assert.Equal(t, http.StatusConflict, AlreadyExists("x").HTTPStatus())
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("open failed")
	err := Wrap(cause, CodeUnavailable, "failed to open badger db")

	assert.True(t, stderrors.Is(err, ErrUnavailable))
	assert.ErrorIs(t, err, cause)
}

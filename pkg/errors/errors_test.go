package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewBadRequestError("INVALID_INPUT", "bad payload")

	assert.Equal(t, "[INVALID_INPUT] bad payload", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.NotEmpty(t, err.Stack)
}

func TestWithDetails(t *testing.T) {
	err := NewNotFoundError("ROOM_NOT_FOUND", "no such room").
		WithDetails(map[string]string{"room": "r1"})

	assert.Equal(t, map[string]string{"room": "r1"}, err.Details)
}

func TestFromErrorPassesThroughAppError(t *testing.T) {
	orig := NewInternalServerError("LEDGER_ERROR", "lookup failed")

	assert.Same(t, orig, FromError(orig))
}

func TestFromErrorWrapsPlainError(t *testing.T) {
	err := FromError(stderrors.New("boom"))

	require.NotNil(t, err)
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.Equal(t, "boom", err.Message)
}

func TestIsMatchesByCode(t *testing.T) {
	a := NewBadRequestError("INVALID_INPUT", "one")
	b := NewBadRequestError("INVALID_INPUT", "two")

	assert.True(t, Is(a, b))
	assert.False(t, Is(stderrors.New("boom"), b))
	assert.False(t, Is(NewBadRequestError("OTHER", "x"), b))
}

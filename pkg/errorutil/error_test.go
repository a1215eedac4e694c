package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil))

	e := Wrap(errBoom)
	assert.Equal(t, http.StatusInternalServerError, e.Code)
	assert.False(t, e.Retryable)
	assert.ErrorIs(t, e, errBoom)

	retry := RetriableWrap(errBoom, "mysql down")
	wrapped := fmt.Errorf("save: %w", retry)
	assert.Same(t, retry, Wrap(wrapped))
	assert.Equal(t, "mysql down: boom", retry.Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(Retriable("redis timeout")))
	assert.True(t, IsRetryable(fmt.Errorf("outer: %w", RetriableWrap(errBoom, "x"))))
	assert.False(t, IsRetryable(NonRetriable("bad payload")))
	assert.False(t, IsRetryable(errBoom))
}

func TestAuthErrors(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("missing api key").Code)
	assert.Equal(t, http.StatusForbidden, Forbidden("read-only key").Code)
	assert.Equal(t, http.StatusNotFound, NotFound(errBoom).Code)
}

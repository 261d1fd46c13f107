package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundKeepsMessageVerbatim(t *testing.T) {
	err := NotFound("project not found")

	assert.Equal(t, KindNotFound, err.Kind)
	assert.Equal(t, "project not found", err.Message)
	assert.Equal(t, "NotFound: project not found", err.Error())
}

func TestAuthRequired(t *testing.T) {
	err := AuthRequired("missing bearer token")

	assert.Equal(t, KindAuthRequired, err.Kind)
	assert.True(t, Is(err, KindAuthRequired))
}

func TestKindOf(t *testing.T) {
	wrapped := Wrap(KindPersistence, "failed to save", errors.New("pq: gone"))

	assert.Equal(t, KindPersistence, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindNotFound, KindOf(Wrap(KindInternal, "outer", NotFound("chat not found")).Unwrap()))
}

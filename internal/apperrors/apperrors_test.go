package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"sparkmatch-backend/internal/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWalksWrapChain(t *testing.T) {
	base := apperrors.New(apperrors.NotFound, "user not found")
	wrapped := fmt.Errorf("loading profile: %w", base)

	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(wrapped))
	assert.True(t, apperrors.Is(wrapped, apperrors.NotFound))
	assert.False(t, apperrors.Is(wrapped, apperrors.Conflict))
}

func TestUnclassifiedDefaultsToPersistence(t *testing.T) {
	assert.Equal(t, apperrors.Persistence, apperrors.KindOf(errors.New("boom")))
	assert.False(t, apperrors.Is(nil, apperrors.Persistence))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperrors.Wrap(apperrors.Persistence, "failed to save user", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to save user")
	assert.Contains(t, err.Error(), "connection refused")
}

package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKind(t *testing.T) {
	err := NotFound("workspace")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "not_found: workspace not found", err.Error())
}

func TestIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("remove member: %w", ErrAdminCannotBeRemoved)

	assert.True(t, errors.Is(err, ErrAdminCannotBeRemoved))
	assert.Equal(t, KindAdminCannotBeRemoved, KindOf(err))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("connection reset")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

package domerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodeNotFound, "task not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("matches code through wrapping", func(t *testing.T) {
		inner := New(CodeConflict, "duplicate name")
		outer := Wrap(inner, CodeInternal, "create department")
		assert.True(t, HasCode(outer, CodeConflict))
		assert.True(t, HasCode(outer, CodeInternal))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		inner := New(CodeForbidden, "denied")
		outer := fmt.Errorf("handler: %w", inner)
		assert.True(t, HasCode(outer, CodeForbidden))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "load task")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeInternal, CodeOf(err))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "noop"))
}

func TestCodeOfAndMessageOf(t *testing.T) {
	t.Run("coded error", func(t *testing.T) {
		err := New(CodeValidation, "progress must be between 0 and 100")
		assert.Equal(t, CodeValidation, CodeOf(err))
		assert.Equal(t, "progress must be between 0 and 100", MessageOf(err))
	})

	t.Run("uncoded error falls back to internal", func(t *testing.T) {
		err := errors.New("boom")
		assert.Equal(t, CodeInternal, CodeOf(err))
		assert.Equal(t, "internal error", MessageOf(err))
	})
}

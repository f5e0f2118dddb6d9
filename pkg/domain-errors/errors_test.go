package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCodeThroughWrapping(t *testing.T) {
	base := New(CodeConflict, "status already changed")
	wrapped := fmt.Errorf("transition: %w", base)

	assert.True(t, HasCode(wrapped, CodeConflict))
	assert.False(t, HasCode(wrapped, CodeValidation))
	assert.False(t, HasCode(errors.New("plain"), CodeConflict))
}

func TestErrorIsMatchesCodeAndMessage(t *testing.T) {
	err := New(CodeNotFound, "application not found")

	require.ErrorIs(t, err, New(CodeNotFound, "application not found"))
	require.ErrorIs(t, err, &Error{Code: CodeNotFound})
	assert.NotErrorIs(t, err, New(CodeNotFound, "payment not found"))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternal, "failed to load application")

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Nil(t, Wrap(nil, CodeInternal, "unused"))
}

func TestWithFieldDetails(t *testing.T) {
	err := New(CodeValidation, "exceeds maximum").WithField("totalRooms", 5, 21)

	de, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "totalRooms", de.Field)
	assert.Equal(t, 5, de.Current)
	assert.Equal(t, 21, de.Attempted)
}

package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatorCollectsErrors(t *testing.T) {
	v := NewValidator()
	v.Field("filename", "", Required)
	v.Field("id", "not-a-uuid", UUID)
	v.Field("note", "abcdef", MaxLength(3))

	assert.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 3)
	assert.Contains(t, v.ErrorMessage(), "filename")
}

func TestValidatorPasses(t *testing.T) {
	v := NewValidator()
	v.Field("filename", "intake.txt", Required, MaxLength(255))
	v.Field("id", "a3bb189e-8bf9-3888-9912-ace4e6543002", UUID)

	assert.False(t, v.HasErrors())
	assert.Empty(t, v.ErrorMessage())
}

func TestAppErrorWrapsSentinel(t *testing.T) {
	err := NewAppError("INVALID_INPUT", "bad file type", ErrInvalidInput)

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "INVALID_INPUT")
	assert.False(t, IsNotFound(err))
	assert.True(t, IsNotFound(NewAppError("X", "y", ErrNotFound)))
}

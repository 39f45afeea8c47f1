package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeValidation, "Name, Company, and Phone are required.")
	assert.True(t, errors.Is(err, Validation))
	assert.False(t, errors.Is(err, Remote))

	wrapped := fmt.Errorf("add lead: %w", err)
	assert.True(t, errors.Is(wrapped, Validation))
	assert.Equal(t, CodeValidation, CodeOf(wrapped))
}

func TestWrapKeepsExistingCode(t *testing.T) {
	inner := New(CodeNotFound, "campaign not found")
	outer := Wrap(inner, CodeRemote, "failed to add lead")
	assert.Equal(t, CodeNotFound, CodeOf(outer))
	assert.Equal(t, "failed to add lead", MessageOf(outer))

	plain := Wrap(errors.New("connection refused"), CodeRemote, "")
	assert.Equal(t, CodeRemote, CodeOf(plain))
	assert.Equal(t, "connection refused", MessageOf(plain))
	assert.Nil(t, Wrap(nil, CodeRemote, "x"))
}

func TestCodeOfUnknownError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

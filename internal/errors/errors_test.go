package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/l1jgo/gridworld/internal/errors"
)

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errors.Code
	}{
		{"validation", errors.Validation("bad args"), errors.CodeValidation},
		{"not found", errors.NotFoundf("no %s", "sword"), errors.CodeNotFound},
		{"wrapped keeps code", fmt.Errorf("ctx: %w", errors.Conflict("stale")), errors.CodeConflict},
		{"wrap keeps code", errors.Wrap(errors.NotFound("x"), "outer"), errors.CodeNotFound},
		{"foreign error", stderrors.New("boom"), errors.CodeInternal},
		{"persistence", errors.Persistence(stderrors.New("io"), "save"), errors.CodePersistence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.GetCode(tt.err))
		})
	}
}

func TestMessageAndVisibility(t *testing.T) {
	err := errors.NotFound("You don't have that.")
	assert.Equal(t, "You don't have that.", errors.Message(err))
	assert.True(t, errors.GetCode(err).PlayerVisible())
	assert.False(t, errors.CodePersistence.PlayerVisible())
	assert.False(t, errors.CodeInternal.PlayerVisible())
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("load: %w", errors.NotFound("record"))
	assert.True(t, errors.Is(err, errors.NotFound("")))
	assert.True(t, errors.IsNotFound(err))
	assert.False(t, errors.IsValidation(err))
	assert.False(t, errors.IsNotFound(nil))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, "x"))
	assert.Nil(t, errors.WrapWithCode(nil, errors.CodeInternal, "x"))
}

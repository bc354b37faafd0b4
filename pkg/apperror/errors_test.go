package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsWrapSentinels(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{NotFound("student %d not found", 7), ErrNotFound},
		{Unauthorized("wrong office"), ErrUnauthorized},
		{InvalidState("already approved"), ErrInvalidState},
		{Validation("semester is required"), ErrValidation},
	}
	for _, tc := range cases {
		assert.ErrorIs(t, tc.err, tc.sentinel)
	}
}

func TestErrorMessage(t *testing.T) {
	err := NotFound("student %s not found", "2025-0001")
	assert.Equal(t, "student 2025-0001 not found", err.Error())

	bare := &Error{Err: ErrValidation}
	assert.Equal(t, ErrValidation.Error(), bare.Error())
}

func TestWrappedErrorsStillMatch(t *testing.T) {
	err := fmt.Errorf("activating student: %w", InvalidState("already rejected"))
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.False(t, errors.Is(err, ErrNotFound))
}

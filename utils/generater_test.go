package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateOTP(6)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "non-digit in %q", code)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2030-01-07", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Monday, d.Weekday())

	_, err = ParseDate("07/01/2030", time.UTC)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, 404, StatusFor(ErrNotFound))
	assert.Equal(t, 409, StatusFor(errors.Join(errors.New("x"), ErrConflict)))
	assert.Equal(t, 500, StatusFor(errors.New("boom")))
}

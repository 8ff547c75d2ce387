package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("amount", " 12.345 ")
	require.NoError(t, err)
	assert.Equal(t, "12.35", d.StringFixed(2))

	for _, s := range []string{"", "0", "-1", "1,5", "abc"} {
		_, err := ParseAmount("amount", s)
		var ve *ValidationError
		require.True(t, errors.As(err, &ve), s)
		assert.Equal(t, "amount", ve.Field)
	}

	d, err = ParseOptionalAmount("extra_charges", "")
	require.NoError(t, err)
	assert.True(t, d.IsZero())
	_, err = ParseOptionalAmount("extra_charges", "-0.5")
	assert.True(t, IsValidation(err))
}

func TestNotFound(t *testing.T) {
	err := notFound(gorm.ErrRecordNotFound, "交易", 3)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "交易 3")

	err = notFound(fmt.Errorf("boom"), "交易", 3)
	assert.False(t, errors.Is(err, ErrNotFound))
}

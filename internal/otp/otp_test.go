package otp_test

import (
	"testing"

	"github.com/aretw0/onboarding/internal/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	code, err := otp.Generate(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Regexp(t, `^[0-9]{6}$`, code)

	_, err = otp.Generate(2)
	assert.ErrorIs(t, err, otp.ErrInvalidDigits)
	_, err = otp.Generate(11)
	assert.ErrorIs(t, err, otp.ErrInvalidDigits)
}

func TestHashAndEqual(t *testing.T) {
	stored := otp.Hash("123456")
	assert.True(t, otp.Equal(stored, "123456"))
	assert.True(t, otp.Equal(stored, " 123456 "), "surrounding whitespace is ignored")
	assert.False(t, otp.Equal(stored, "123457"))
	assert.False(t, otp.Equal(stored, ""))
}

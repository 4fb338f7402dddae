package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/onboarding/pkg/domain"
)

func TestSanitizeValue(t *testing.T) {
	t.Run("Whitespace is preserved", func(t *testing.T) {
		got, err := SanitizeValue("  Abc123!@  ")
		require.NoError(t, err)
		assert.Equal(t, "  Abc123!@  ", got)
	})

	t.Run("Control characters are removed", func(t *testing.T) {
		got, err := SanitizeValue("Ada\x1b[31m\n")
		require.NoError(t, err)
		assert.Equal(t, "Ada[31m", got)
	})

	t.Run("Invalid UTF-8 is rejected", func(t *testing.T) {
		_, err := SanitizeValue("bad\xff")
		assert.ErrorIs(t, err, ErrInvalidUTF8)
	})

	t.Run("Oversized value is rejected", func(t *testing.T) {
		_, err := SanitizeValue(strings.Repeat("a", MaxValueSize+1))
		assert.ErrorIs(t, err, ErrValueTooLarge)
	})

	t.Run("Limit can be overridden from the environment", func(t *testing.T) {
		t.Setenv(EnvMaxValueSize, "4")
		_, err := SanitizeValue("12345")
		assert.ErrorIs(t, err, ErrValueTooLarge)
	})
}

func TestSanitizeField(t *testing.T) {
	t.Run("Text is trimmed", func(t *testing.T) {
		got, err := SanitizeField(domain.KindEmail, "  a@b.com ")
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", got)
	})

	t.Run("Password is kept as typed", func(t *testing.T) {
		got, err := SanitizeField(domain.KindPassword, "  Abc123!@  ")
		require.NoError(t, err)
		assert.Equal(t, "  Abc123!@  ", got)
	})

	t.Run("Password still loses control characters", func(t *testing.T) {
		got, err := SanitizeField(domain.KindPassword, " Abc\x1b123!@")
		require.NoError(t, err)
		assert.Equal(t, " Abc123!@", got)
	})

	t.Run("Errors pass through", func(t *testing.T) {
		_, err := SanitizeField(domain.KindText, "bad\xff")
		assert.ErrorIs(t, err, ErrInvalidUTF8)
	})
}

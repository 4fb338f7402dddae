package validation

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/onboarding/pkg/domain"
)

// EnvMaxValueSize overrides MaxValueSize when set to a positive integer.
const EnvMaxValueSize = "ONBOARD_MAX_VALUE_SIZE"

// MaxValueSize is the default limit, in bytes, for a single field value.
var MaxValueSize = 1024

var (
	ErrValueTooLarge = errors.New("value exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("value contains invalid UTF-8 sequences")
)

// SanitizeValue prepares untrusted input for a single-line field.
// Oversized values are rejected rather than truncated. Control characters
// (including newlines and ANSI escapes) are removed. Whitespace is kept: it is
// part of what the user typed.
func SanitizeValue(value string) (string, error) {
	limit := maxValueSize()
	if len(value) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrValueTooLarge, len(value), limit)
	}
	if !utf8.ValidString(value) {
		return "", ErrInvalidUTF8
	}

	if strings.IndexFunc(value, unicode.IsControl) < 0 {
		return value, nil
	}

	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// SanitizeField is SanitizeValue for typed line input: surrounding whitespace
// is trimmed, except from passwords which are kept byte for byte.
func SanitizeField(kind domain.FieldKind, value string) (string, error) {
	clean, err := SanitizeValue(value)
	if err != nil || kind == domain.KindPassword {
		return clean, err
	}
	return strings.TrimSpace(clean), nil
}

func maxValueSize() int {
	if raw := os.Getenv(EnvMaxValueSize); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return MaxValueSize
}

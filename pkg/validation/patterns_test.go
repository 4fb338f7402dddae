package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Abc123!@", true},
		{"password1!", true},
		{"abc123!", false},   // too short
		{"abcdefgh1", false}, // no special character
		{"abcdefgh!", false}, // no digit
		{"12345678!", false}, // no letter
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, StrongPassword.MatchString(tt.password))
		})
	}
}

func TestEmail(t *testing.T) {
	assert.True(t, Email.MatchString("a@b.com"))
	assert.True(t, Email.MatchString("first.last+tag@sub.example.org"))
	assert.False(t, Email.MatchString("a@b"))
	assert.False(t, Email.MatchString("@b.com"))
	assert.False(t, Email.MatchString(strings.Repeat(" ", 3)))
}

func TestAllOf_Empty(t *testing.T) {
	assert.True(t, AllOf().MatchString("anything"))
}

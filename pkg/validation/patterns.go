package validation

import (
	"regexp"

	"github.com/aretw0/onboarding/pkg/domain"
)

// Email accepts "local@domain.tld" with no whitespace and a single "@".
var Email = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// StrongPassword requires 8+ characters with a letter, a digit and a special character.
// RE2 has no look-ahead, so the requirement is expressed as a conjunction.
var StrongPassword = AllOf(
	regexp.MustCompile(`^.{8,}$`),
	regexp.MustCompile(`[A-Za-z]`),
	regexp.MustCompile(`[0-9]`),
	regexp.MustCompile(`[^A-Za-z0-9\s]`),
)

type allOf []domain.Matcher

// AllOf returns a matcher that passes only when every matcher passes.
func AllOf(matchers ...domain.Matcher) domain.Matcher {
	return allOf(matchers)
}

func (m allOf) MatchString(s string) bool {
	for _, matcher := range m {
		if !matcher.MatchString(s) {
			return false
		}
	}
	return true
}

// MatchesField returns a cross check that passes iff the value equals the value of
// the other field. A missing other value never matches.
func MatchesField(other string) domain.CrossCheck {
	return func(value string, all domain.Values) bool {
		want, ok := all[other]
		if !ok {
			return false
		}
		return value == want
	}
}

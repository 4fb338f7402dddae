package validation

import (
	"fmt"

	"github.com/aretw0/onboarding/pkg/domain"
)

// Check evaluates rule against the value of field in all and returns the first
// failing message, or "" when the value is valid.
//
// Order: required (short-circuits on an empty value), pattern, cross-field.
// Only a missing or "" value counts as empty; whitespace is a value. Patterns
// are not tested against empty values, so optional fields stay valid when left blank.
func Check(field string, rule domain.Rule, all domain.Values) string {
	value := all[field]
	empty := value == ""

	if rule.Required && empty {
		if rule.RequiredMessage != "" {
			return rule.RequiredMessage
		}
		return fmt.Sprintf("%s is required", field)
	}

	if rule.Pattern != nil && !empty && !rule.Pattern.MatchString(value) {
		return messageOr(rule.PatternMessage, fmt.Sprintf("%s is invalid", field))
	}

	if rule.Cross != nil && !rule.Cross(value, all) {
		return messageOr(rule.CrossMessage, fmt.Sprintf("%s is invalid", field))
	}

	return ""
}

// Fields runs Check for every named field that has a rule. Fields without a rule
// entry are always valid. The result maps failing fields to their message.
func Fields(rules map[string]domain.Rule, all domain.Values, fields ...string) map[string]string {
	failures := make(map[string]string)
	for _, name := range fields {
		rule, ok := rules[name]
		if !ok {
			continue
		}
		if msg := Check(name, rule, all); msg != "" {
			failures[name] = msg
		}
	}
	return failures
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}

package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

// DefaultSecretPatterns match the password, confirmation and one-time code fields.
var DefaultSecretPatterns = []string{`(?i)^(confirm)?password$`, `(?i)^otp$`}

type redactionMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware masks the values of fields whose name matches any
// pattern when states are loaded. Saves pass through untouched, so the wrapped
// store keeps working data; use the redacted view for inspection only.
func NewRedactionMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.StateStore) ports.StateStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactionMiddleware) Save(ctx context.Context, sessionID string, state *domain.State) error {
	return m.next.Save(ctx, sessionID, state)
}

func (m *redactionMiddleware) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	state, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	masked := state.Snapshot()
	m.mask(masked.Fields)
	return masked, nil
}

func (m *redactionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *redactionMiddleware) mask(values domain.Values) {
	for k, v := range values {
		if v == "" {
			continue
		}
		for _, p := range m.patterns {
			if p.MatchString(k) {
				values[k] = Mask
				break
			}
		}
	}
}

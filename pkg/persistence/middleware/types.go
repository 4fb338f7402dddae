// Package middleware wraps a ports.StateStore with cross-cutting behavior:
// encryption at rest and redaction of secret fields for inspection.
package middleware

import "github.com/aretw0/onboarding/pkg/ports"

// Middleware allows wrapping a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore

// Chain applies middlewares so that the first one is the outermost.
func Chain(store ports.StateStore, mws ...Middleware) ports.StateStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}

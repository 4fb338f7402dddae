package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes access to a wizard session across replicas.
// It is only needed when several processes share a StateStore.
type DistributedLocker interface {
	// Lock blocks until key is held, ctx is done or the implementation gives up.
	// The lock expires after ttl so a crashed holder cannot wedge a session.
	// The returned UnlockFunc must be called exactly once.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

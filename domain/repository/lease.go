package repository

import (
	"context"
	"time"
)

// LeaseRepository is the time-bound mutual-exclusion primitive behind host
// claiming. Acquire is conditional-create: it returns false when another
// holder's lease is live. Release only deletes a lease still owned by
// holderID, so an expired-and-reacquired lease is never clobbered.
type LeaseRepository interface {
	Acquire(ctx context.Context, key, holderID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, holderID string) (bool, error)
}

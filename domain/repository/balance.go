package repository

import "context"

type BalanceRepository interface {
	// Get returns the stored balance in micro-units, or 0 when absent. A
	// non-nil seed initializes an absent balance atomically before the
	// read, so concurrent first reads agree on the seeded value.
	Get(ctx context.Context, roomID, addr string, seed *int64) (int64, error)

	// Adjust applies delta atomically. It is the only mutation path; the
	// ledger is never read-modify-written.
	Adjust(ctx context.Context, roomID, addr string, delta int64) (int64, error)
}

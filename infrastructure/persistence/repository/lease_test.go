package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Lease_SecondAcquireFailsWhileHeld(t *testing.T) {
	req := require.New(t)
	_, client := newTestClient(t)
	repo := NewLeaseRepository(client)
	ctx := context.Background()

	acquired, err := repo.Acquire(ctx, "room:global:lock", "holder-a", 10*time.Second)
	req.NoError(err)
	req.True(acquired)

	acquired, err = repo.Acquire(ctx, "room:global:lock", "holder-b", 10*time.Second)
	req.NoError(err)
	req.False(acquired)
}

func Test_Lease_ReleaseOnlyByHolder(t *testing.T) {
	req := require.New(t)
	_, client := newTestClient(t)
	repo := NewLeaseRepository(client)
	ctx := context.Background()

	acquired, err := repo.Acquire(ctx, "room:global:lock", "holder-a", 10*time.Second)
	req.NoError(err)
	req.True(acquired)

	released, err := repo.Release(ctx, "room:global:lock", "holder-b")
	req.NoError(err)
	req.False(released)

	released, err = repo.Release(ctx, "room:global:lock", "holder-a")
	req.NoError(err)
	req.True(released)

	// Lease is gone, a new holder can take it.
	acquired, err = repo.Acquire(ctx, "room:global:lock", "holder-b", 10*time.Second)
	req.NoError(err)
	req.True(acquired)
}

func Test_Lease_ExpiresByTTL(t *testing.T) {
	req := require.New(t)
	mr, client := newTestClient(t)
	repo := NewLeaseRepository(client)
	ctx := context.Background()

	acquired, err := repo.Acquire(ctx, "room:global:lock", "holder-a", 2*time.Second)
	req.NoError(err)
	req.True(acquired)

	mr.FastForward(3 * time.Second)

	acquired, err = repo.Acquire(ctx, "room:global:lock", "holder-b", 2*time.Second)
	req.NoError(err)
	req.True(acquired)

	// The dead holder must not be able to delete the new lease.
	released, err := repo.Release(ctx, "room:global:lock", "holder-a")
	req.NoError(err)
	req.False(released)
}

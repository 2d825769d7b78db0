package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Balance_MissingReadsAsZero(t *testing.T) {
	req := require.New(t)
	_, client := newTestClient(t)
	repo := NewBalanceRepository(client)

	balance, err := repo.Get(context.Background(), "global", "0xguest", nil)
	req.NoError(err)
	req.EqualValues(0, balance)
}

func Test_Balance_SeedOnlyAppliesOnce(t *testing.T) {
	req := require.New(t)
	_, client := newTestClient(t)
	repo := NewBalanceRepository(client)
	ctx := context.Background()

	seed := int64(100_000_000)
	balance, err := repo.Get(ctx, "global", "0xguest", &seed)
	req.NoError(err)
	req.EqualValues(100_000_000, balance)

	// A later read with a different seed must not reset the balance.
	otherSeed := int64(5)
	balance, err = repo.Get(ctx, "global", "0xguest", &otherSeed)
	req.NoError(err)
	req.EqualValues(100_000_000, balance)
}

func Test_Balance_AdjustIsCumulative(t *testing.T) {
	req := require.New(t)
	_, client := newTestClient(t)
	repo := NewBalanceRepository(client)
	ctx := context.Background()

	balance, err := repo.Adjust(ctx, "global", "0xhost", 1000)
	req.NoError(err)
	req.EqualValues(1000, balance)

	balance, err = repo.Adjust(ctx, "global", "0xhost", -400)
	req.NoError(err)
	req.EqualValues(600, balance)

	balance, err = repo.Get(ctx, "global", "0xhost", nil)
	req.NoError(err)
	req.EqualValues(600, balance)
}

func Test_Balance_RoomsAreIsolated(t *testing.T) {
	req := require.New(t)
	_, client := newTestClient(t)
	repo := NewBalanceRepository(client)
	ctx := context.Background()

	_, err := repo.Adjust(ctx, "alpha", "0xguest", 500)
	req.NoError(err)

	balance, err := repo.Get(ctx, "beta", "0xguest", nil)
	req.NoError(err)
	req.EqualValues(0, balance)
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainRepo "github.com/promptroom/api/domain/repository"
)

// Delete only when the lease still belongs to the caller, so a holder that
// outlived its TTL cannot release a successor's lease.
const releaseLeaseScript = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

type leaseRepository struct {
	client *redis.Client
}

func NewLeaseRepository(client *redis.Client) domainRepo.LeaseRepository {
	return &leaseRepository{client: client}
}

func (r *leaseRepository) Acquire(ctx context.Context, key, holderID string, ttl time.Duration) (bool, error) {
	acquired, err := r.client.SetNX(ctx, key, holderID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lease %s: %w", key, err)
	}
	return acquired, nil
}

func (r *leaseRepository) Release(ctx context.Context, key, holderID string) (bool, error) {
	result, err := r.client.Eval(ctx, releaseLeaseScript, []string{key}, holderID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to release lease %s: %w", key, err)
	}

	deleted, ok := result.(int64)
	return ok && deleted == 1, nil
}

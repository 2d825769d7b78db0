package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/promptroom/api/domain/model"
	domainRepo "github.com/promptroom/api/domain/repository"
)

type balanceRepository struct {
	client *redis.Client
}

func NewBalanceRepository(client *redis.Client) domainRepo.BalanceRepository {
	return &balanceRepository{client: client}
}

func (r *balanceRepository) Get(ctx context.Context, roomID, addr string, seed *int64) (int64, error) {
	keys := model.ResolveRoomKeys(roomID)

	if seed != nil {
		// HSETNX makes first-read seeding atomic: of N racing seeders
		// exactly one writes, and everyone reads the same value back.
		if err := r.client.HSetNX(ctx, keys.BalancesKey, addr, *seed).Err(); err != nil {
			return 0, fmt.Errorf("failed to seed balance: %w", err)
		}
	}

	value, err := r.client.HGet(ctx, keys.BalancesKey, addr).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}

	balance, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("stored balance for %s is not an integer: %w", addr, err)
	}
	return balance, nil
}

func (r *balanceRepository) Adjust(ctx context.Context, roomID, addr string, delta int64) (int64, error) {
	keys := model.ResolveRoomKeys(roomID)

	balance, err := r.client.HIncrBy(ctx, keys.BalancesKey, addr, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to adjust balance: %w", err)
	}
	return balance, nil
}

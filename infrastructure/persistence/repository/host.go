package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/promptroom/api/domain/model"
	domainRepo "github.com/promptroom/api/domain/repository"
)

type hostRepository struct {
	client *redis.Client
}

func NewHostRepository(client *redis.Client) domainRepo.HostRepository {
	return &hostRepository{client: client}
}

func (r *hostRepository) Get(ctx context.Context, roomID string) (*model.HostRecord, error) {
	keys := model.ResolveRoomKeys(roomID)

	data, err := r.client.Get(ctx, keys.HostKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read host record: %w", err)
	}

	var record model.HostRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, model.ErrCorruptHostState
	}

	return &record, nil
}

func (r *hostRepository) Set(ctx context.Context, roomID string, record *model.HostRecord, ttl time.Duration) error {
	keys := model.ResolveRoomKeys(roomID)

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, keys.HostKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write host record: %w", err)
	}
	return nil
}

func (r *hostRepository) Delete(ctx context.Context, roomID string) error {
	keys := model.ResolveRoomKeys(roomID)
	return r.client.Del(ctx, keys.HostKey).Err()
}

package repository

import (
	"context"
	"time"

	"github.com/promptroom/api/domain/model"
)

type HostRepository interface {
	// Get returns nil without error when no host record exists. A stored
	// record that fails to deserialize yields model.ErrCorruptHostState.
	Get(ctx context.Context, roomID string) (*model.HostRecord, error)

	// Set writes the record with a TTL; the key expiring is the liveness
	// reaper, there is no sweep process.
	Set(ctx context.Context, roomID string, record *model.HostRecord, ttl time.Duration) error

	Delete(ctx context.Context, roomID string) error
}

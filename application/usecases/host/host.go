package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/promptroom/api/domain/model"
	"github.com/promptroom/api/domain/repository"
	"github.com/promptroom/api/infrastructure/config"
	"github.com/promptroom/api/infrastructure/events"
	"github.com/promptroom/api/infrastructure/logger"
)

// HostUseCase owns the host seat of a room: exclusive claiming behind the
// lease, liveness renewal, and release. The lease only serializes the brief
// claim critical section; it is gone again before the call returns.
type HostUseCase interface {
	Claim(ctx context.Context, roomID string, candidate model.HostRecord) (*model.HostRecord, error)
	Heartbeat(ctx context.Context, roomID, hostAddr string) (*model.HostRecord, error)
	Release(ctx context.Context, roomID, hostAddr string) error
	State(ctx context.Context, roomID string) (bool, *model.HostRecord, error)
}

type hostUseCase struct {
	hosts     repository.HostRepository
	leases    repository.LeaseRepository
	publisher *events.Publisher
	logger    *logger.Logger

	lockTTL time.Duration
	hostTTL time.Duration
}

func NewHostUseCase(
	hosts repository.HostRepository,
	leases repository.LeaseRepository,
	publisher *events.Publisher,
	logger *logger.Logger,
	cfg *config.Config,
) HostUseCase {
	return &hostUseCase{
		hosts:     hosts,
		leases:    leases,
		publisher: publisher,
		logger:    logger,
		lockTTL:   cfg.Room.LockTTL,
		hostTTL:   cfg.Room.HostTTL,
	}
}

func (uc *hostUseCase) Claim(ctx context.Context, roomID string, candidate model.HostRecord) (*model.HostRecord, error) {
	roomID = model.NormalizeRoomID(roomID)
	keys := model.ResolveRoomKeys(roomID)

	holder := fmt.Sprintf("lock_%s_%d", candidate.HostAddr, time.Now().UnixMilli())
	acquired, err := uc.leases.Acquire(ctx, keys.LockKey, holder, uc.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire claim lock: %w", err)
	}
	if !acquired {
		// Another claim is mid-flight. Retryable, unlike ErrRoomHosted.
		return nil, model.ErrRoomBusy
	}
	defer func() {
		if _, err := uc.leases.Release(ctx, keys.LockKey, holder); err != nil {
			uc.logger.Warn("failed to release claim lock", zap.Error(err), zap.String("roomID", roomID))
		}
	}()

	existing, err := uc.hosts.Get(ctx, roomID)
	if err != nil {
		if !errors.Is(err, model.ErrCorruptHostState) {
			return nil, fmt.Errorf("failed to read host record: %w", err)
		}
		// A record we cannot decode is claimed over, not fatal.
		uc.logger.Warn("overwriting corrupt host record", zap.String("roomID", roomID))
		existing = nil
	}
	if existing != nil && existing.Online(uc.hostTTL) {
		return nil, model.ErrRoomHosted
	}

	candidate.Connected = true
	candidate.LastSeen = time.Now().UnixMilli()

	if err := uc.hosts.Set(ctx, roomID, &candidate, uc.hostTTL); err != nil {
		return nil, fmt.Errorf("failed to write host record: %w", err)
	}

	if err := uc.publisher.PublishHostClaimed(ctx, roomID, candidate.HostAddr); err != nil {
		uc.logger.Warn("failed to publish host claimed event", zap.Error(err), zap.String("roomID", roomID))
	}

	uc.logger.Info("host claimed room",
		zap.String("roomID", roomID),
		zap.String("hostAddr", candidate.HostAddr),
		zap.String("modelID", candidate.ModelID),
	)
	return &candidate, nil
}

// Heartbeat renews liveness without the lease: ownership is re-read before
// the write, and a lost update only shortens liveness accuracy.
func (uc *hostUseCase) Heartbeat(ctx context.Context, roomID, hostAddr string) (*model.HostRecord, error) {
	roomID = model.NormalizeRoomID(roomID)

	record, err := uc.hosts.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, model.ErrCorruptHostState) {
			uc.logger.Warn("heartbeat hit corrupt host record", zap.String("roomID", roomID))
			return nil, model.ErrNoActiveHost
		}
		return nil, fmt.Errorf("failed to read host record: %w", err)
	}
	if record == nil {
		return nil, model.ErrNoActiveHost
	}
	if record.HostAddr != hostAddr {
		return nil, model.ErrHostMismatch
	}

	record.LastSeen = time.Now().UnixMilli()
	if err := uc.hosts.Set(ctx, roomID, record, uc.hostTTL); err != nil {
		return nil, fmt.Errorf("failed to renew host record: %w", err)
	}

	return record, nil
}

func (uc *hostUseCase) Release(ctx context.Context, roomID, hostAddr string) error {
	roomID = model.NormalizeRoomID(roomID)

	record, err := uc.hosts.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, model.ErrCorruptHostState) {
			// Nothing decodable to protect; releasing clears the debris.
			uc.logger.Warn("releasing corrupt host record", zap.String("roomID", roomID))
			return uc.hosts.Delete(ctx, roomID)
		}
		return fmt.Errorf("failed to read host record: %w", err)
	}
	if record == nil {
		// Releasing an unclaimed room is a no-op, not an error.
		return nil
	}
	if record.HostAddr != hostAddr {
		return model.ErrHostMismatch
	}

	if err := uc.hosts.Delete(ctx, roomID); err != nil {
		return fmt.Errorf("failed to delete host record: %w", err)
	}

	if err := uc.publisher.PublishHostReleased(ctx, roomID, hostAddr); err != nil {
		uc.logger.Warn("failed to publish host released event", zap.Error(err), zap.String("roomID", roomID))
	}

	uc.logger.Info("host released room", zap.String("roomID", roomID), zap.String("hostAddr", hostAddr))
	return nil
}

func (uc *hostUseCase) State(ctx context.Context, roomID string) (bool, *model.HostRecord, error) {
	roomID = model.NormalizeRoomID(roomID)

	record, err := uc.hosts.Get(ctx, roomID)
	if err != nil {
		if errors.Is(err, model.ErrCorruptHostState) {
			uc.logger.Warn("room state hit corrupt host record", zap.String("roomID", roomID))
			return false, nil, nil
		}
		return false, nil, fmt.Errorf("failed to read host record: %w", err)
	}

	return record.Online(uc.hostTTL), record, nil
}

package balance

import (
	"context"
	"fmt"

	"github.com/promptroom/api/domain/model"
	"github.com/promptroom/api/domain/repository"
	"github.com/promptroom/api/infrastructure/logger"
)

type BalanceUseCase interface {
	// Get returns the address's micro-unit balance in the room, seeding an
	// absent balance first when seed is non-nil.
	Get(ctx context.Context, roomID, addr string, seed *int64) (int64, error)
}

type balanceUseCase struct {
	balances repository.BalanceRepository
	logger   *logger.Logger
}

func NewBalanceUseCase(balances repository.BalanceRepository, logger *logger.Logger) BalanceUseCase {
	return &balanceUseCase{
		balances: balances,
		logger:   logger,
	}
}

func (uc *balanceUseCase) Get(ctx context.Context, roomID, addr string, seed *int64) (int64, error) {
	roomID = model.NormalizeRoomID(roomID)

	balance, err := uc.balances.Get(ctx, roomID, addr, seed)
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return balance, nil
}

package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DemoFacilitator settles every positive charge locally and mints
// recognizable tx hashes. It keeps the full settlement path exercisable
// without a wallet or a facilitator deployment.
type DemoFacilitator struct{}

func NewDemoFacilitator() *DemoFacilitator {
	return &DemoFacilitator{}
}

func (f *DemoFacilitator) Charge(_ context.Context, input ChargeInput) (*Receipt, error) {
	if input.AmountMicro <= 0 {
		return nil, fmt.Errorf("%w: invalid amount %d", ErrSettlementFailed, input.AmountMicro)
	}

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return &Receipt{
		TxHash:      "demo_" + id[:12],
		AmountMicro: input.AmountMicro,
	}, nil
}

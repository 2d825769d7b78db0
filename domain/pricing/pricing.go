// Package pricing converts billed token counts into integer micro-unit
// charges. Pure functions, shared by the admission check and the settlement
// commit so both always agree on the estimate.
package pricing

import "math"

// DefaultBlockSize is the billing granularity: rates are quoted per 1000
// billed tokens.
const DefaultBlockSize int64 = 1000

// Charge bills billedUnits at ratePerBlock currency units per blockSize
// tokens, in micro-units. Partial blocks are billed as full blocks, and any
// positive billing charges at least one micro-unit.
func Charge(billedUnits int64, ratePerBlock float64, blockSize int64) int64 {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	if billedUnits <= 0 {
		billedUnits = 1
	}

	blocks := (billedUnits + blockSize - 1) / blockSize
	micro := int64(math.Round(float64(blocks) * ratePerBlock * 1_000_000))
	if micro < 1 {
		micro = 1
	}
	return micro
}

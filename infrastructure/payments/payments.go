// Package payments settles per-prompt charges through an external payment
// facilitator. The coordination core never signs anything itself; signing is
// delegated to an injected Signer, and the facilitator's receipt is the
// authoritative record of what was actually charged.
package payments

import (
	"context"
	"errors"
)

// ErrSettlementFailed means the facilitator explicitly refused or failed the
// charge. The caller decides what that means for the ledger (it must mean:
// no mutation).
var ErrSettlementFailed = errors.New("payment settlement failed")

// Receipt is the externally issued proof that a charge completed.
// AmountMicro is the settled amount, which overrides any local estimate when
// reconciling the ledger.
type Receipt struct {
	TxHash      string `json:"txHash"`
	AmountMicro int64  `json:"amountMicro"`
}

type ChargeInput struct {
	PayerAddr   string
	RecvAddr    string
	AmountMicro int64
}

type Facilitator interface {
	Charge(ctx context.Context, input ChargeInput) (*Receipt, error)
}

// PaymentTerms is the machine-readable price carried by a 402 challenge.
type PaymentTerms struct {
	Scheme      string `json:"scheme"`
	Network     string `json:"network"`
	Asset       string `json:"asset"`
	PayTo       string `json:"payTo"`
	AmountMicro int64  `json:"maxAmountRequired"`
}

// Signer produces the signed payment artifact attached to the retried
// request. Wallet and key management live entirely behind this boundary.
type Signer interface {
	Sign(ctx context.Context, payer string, terms PaymentTerms) (string, error)
}

package sign

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/promptroom/api/infrastructure/payments"
)

var ErrKeyMissing = errors.New("signing key missing")

// HMACSigner turns 402 payment terms into a signed artifact with a shared
// HMAC key. It stands in for a wallet signature in deployments where the
// facilitator and the coordination core trust the same secret.
type HMACSigner struct {
	key []byte
}

func NewHMACSigner(key []byte) (*HMACSigner, error) {
	if len(key) == 0 {
		return nil, ErrKeyMissing
	}
	return &HMACSigner{key: key}, nil
}

var _ payments.Signer = (*HMACSigner)(nil)

// Artifact is the signed payment claim carried in the X-Payment header.
type Artifact struct {
	Payer       string `json:"payer"`
	Scheme      string `json:"scheme"`
	Network     string `json:"network"`
	Asset       string `json:"asset"`
	PayTo       string `json:"payTo"`
	AmountMicro int64  `json:"amountMicro"`
	IssuedAt    int64  `json:"issuedAt"`
}

type artifactEnvelope struct {
	Payload   Artifact `json:"payload"`
	Signature string   `json:"signature"`
}

func (s *HMACSigner) Sign(_ context.Context, payer string, terms payments.PaymentTerms) (string, error) {
	payload := Artifact{
		Payer:       payer,
		Scheme:      terms.Scheme,
		Network:     terms.Network,
		Asset:       terms.Asset,
		PayTo:       terms.PayTo,
		AmountMicro: terms.AmountMicro,
		IssuedAt:    time.Now().Unix(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, s.key)
	mac.Write(raw)

	envelope, err := json.Marshal(artifactEnvelope{
		Payload:   payload,
		Signature: base64.StdEncoding.EncodeToString(mac.Sum(nil)),
	})
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(envelope), nil
}

// Verify checks an artifact produced by Sign. The facilitator side of a
// shared-key deployment uses it before settling.
func (s *HMACSigner) Verify(artifact string) (*Artifact, error) {
	raw, err := base64.StdEncoding.DecodeString(artifact)
	if err != nil {
		return nil, err
	}

	var envelope artifactEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}

	payloadRaw, err := json.Marshal(envelope.Payload)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, s.key)
	mac.Write(payloadRaw)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(envelope.Signature)) {
		return nil, errors.New("signature mismatch")
	}
	return &envelope.Payload, nil
}

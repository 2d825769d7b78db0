package sign

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promptroom/api/infrastructure/payments"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	require := require.New(t)

	signer, err := NewHMACSigner([]byte("shared-secret"))
	require.NoError(err)

	artifact, err := signer.Sign(context.Background(), "0xpayer", payments.PaymentTerms{
		Scheme:      "exact",
		Network:     "base-sepolia",
		Asset:       "usdc",
		PayTo:       "0xrecv",
		AmountMicro: 1000,
	})
	require.NoError(err)

	payload, err := signer.Verify(artifact)
	require.NoError(err)
	require.Equal("0xpayer", payload.Payer)
	require.Equal("0xrecv", payload.PayTo)
	require.Equal(int64(1000), payload.AmountMicro)
}

func TestVerifyRejectsTamperedArtifact(t *testing.T) {
	require := require.New(t)

	signer, err := NewHMACSigner([]byte("shared-secret"))
	require.NoError(err)

	artifact, err := signer.Sign(context.Background(), "0xpayer", payments.PaymentTerms{
		PayTo:       "0xrecv",
		AmountMicro: 1000,
	})
	require.NoError(err)

	raw, err := base64.StdEncoding.DecodeString(artifact)
	require.NoError(err)

	var envelope artifactEnvelope
	require.NoError(json.Unmarshal(raw, &envelope))
	envelope.Payload.AmountMicro = 1

	tampered, err := json.Marshal(envelope)
	require.NoError(err)

	_, err = signer.Verify(base64.StdEncoding.EncodeToString(tampered))
	require.Error(err)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	require := require.New(t)

	signer, err := NewHMACSigner([]byte("key-one"))
	require.NoError(err)
	other, err := NewHMACSigner([]byte("key-two"))
	require.NoError(err)

	artifact, err := signer.Sign(context.Background(), "0xpayer", payments.PaymentTerms{
		PayTo:       "0xrecv",
		AmountMicro: 500,
	})
	require.NoError(err)

	_, err = other.Verify(artifact)
	require.Error(err)
}

func TestNewHMACSignerRequiresKey(t *testing.T) {
	_, err := NewHMACSigner(nil)
	require.ErrorIs(t, err, ErrKeyMissing)
}

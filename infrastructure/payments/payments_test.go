package payments

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/promptroom/api/infrastructure/config"
)

func Test_DemoFacilitator_MintsReceipts(t *testing.T) {
	req := require.New(t)

	facilitator := NewDemoFacilitator()
	receipt, err := facilitator.Charge(context.Background(), ChargeInput{
		PayerAddr:   "0xguest",
		RecvAddr:    "0xhost",
		AmountMicro: 1000,
	})
	req.NoError(err)
	req.True(strings.HasPrefix(receipt.TxHash, "demo_"))
	req.Len(receipt.TxHash, len("demo_")+12)
	req.EqualValues(1000, receipt.AmountMicro)
}

func Test_DemoFacilitator_RejectsNonPositiveAmounts(t *testing.T) {
	req := require.New(t)

	facilitator := NewDemoFacilitator()
	for _, amount := range []int64{0, -5} {
		_, err := facilitator.Charge(context.Background(), ChargeInput{AmountMicro: amount})
		req.ErrorIs(err, ErrSettlementFailed)
	}
}

type staticSigner struct {
	artifact string
	signed   int
}

func (s *staticSigner) Sign(_ context.Context, _ string, _ PaymentTerms) (string, error) {
	s.signed++
	return s.artifact, nil
}

func facilitatorConfig(url string) *config.Config {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Payments.Mode = "http"
	cfg.Payments.FacilitatorURL = url
	cfg.Payments.Timeout = 2 * time.Second
	return cfg
}

func encodeReceipt(t *testing.T, receipt Receipt) string {
	t.Helper()
	raw, err := json.Marshal(receipt)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func Test_HTTPFacilitator_RunsChallengeResponseFlow(t *testing.T) {
	req := require.New(t)

	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("X-Payment") == "" {
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = w.Write([]byte(`{"accepts":[{"scheme":"exact","network":"base","asset":"usdc","payTo":"0xhost","maxAmountRequired":1000}]}`))
			return
		}
		req.Equal("signed-artifact", r.Header.Get("X-Payment"))
		w.Header().Set("X-Payment-Response", encodeReceipt(t, Receipt{TxHash: "0xabc", AmountMicro: 990}))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	signer := &staticSigner{artifact: "signed-artifact"}
	facilitator := NewHTTPFacilitator(facilitatorConfig(server.URL), signer)

	receipt, err := facilitator.Charge(context.Background(), ChargeInput{
		PayerAddr:   "0xguest",
		RecvAddr:    "0xhost",
		AmountMicro: 1000,
	})
	req.NoError(err)
	req.Equal(2, calls)
	req.Equal(1, signer.signed)
	req.Equal("0xabc", receipt.TxHash)

	// The settled amount comes from the receipt, not the request.
	req.EqualValues(990, receipt.AmountMicro)
}

func Test_HTTPFacilitator_SettlementRefusalFails(t *testing.T) {
	req := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	facilitator := NewHTTPFacilitator(facilitatorConfig(server.URL), &staticSigner{})
	_, err := facilitator.Charge(context.Background(), ChargeInput{
		PayerAddr: "0xguest", RecvAddr: "0xhost", AmountMicro: 1000,
	})
	req.ErrorIs(err, ErrSettlementFailed)
}

func Test_HTTPFacilitator_MissingReceiptHeaderFails(t *testing.T) {
	req := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	facilitator := NewHTTPFacilitator(facilitatorConfig(server.URL), &staticSigner{})
	_, err := facilitator.Charge(context.Background(), ChargeInput{
		PayerAddr: "0xguest", RecvAddr: "0xhost", AmountMicro: 1000,
	})
	req.ErrorIs(err, ErrSettlementFailed)
}

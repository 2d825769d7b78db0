package payments

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/promptroom/api/infrastructure/config"
)

const (
	paymentHeader         = "X-Payment"
	paymentResponseHeader = "X-Payment-Response"
)

// HTTPFacilitator drives the 402 challenge/response flow: a first request
// answered with 402 carries payment terms, the Signer turns them into a
// signed artifact, and the retried request settles and returns a receipt
// header.
type HTTPFacilitator struct {
	baseURL    string
	httpClient *http.Client
	signer     Signer
}

func NewHTTPFacilitator(cfg *config.Config, signer Signer) *HTTPFacilitator {
	return &HTTPFacilitator{
		baseURL:    cfg.Payments.FacilitatorURL,
		httpClient: &http.Client{Timeout: cfg.Payments.Timeout},
		signer:     signer,
	}
}

type chargeRequest struct {
	PayerAddr   string `json:"payerAddr"`
	RecvAddr    string `json:"recvAddr"`
	AmountMicro int64  `json:"amountMicro"`
}

type challengeBody struct {
	Accepts []PaymentTerms `json:"accepts"`
}

func (f *HTTPFacilitator) Charge(ctx context.Context, input ChargeInput) (*Receipt, error) {
	if input.AmountMicro <= 0 {
		return nil, fmt.Errorf("%w: invalid amount %d", ErrSettlementFailed, input.AmountMicro)
	}

	resp, err := f.post(ctx, input, "")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusPaymentRequired {
		terms, err := decodeTerms(resp)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		artifact, err := f.signer.Sign(ctx, input.PayerAddr, terms)
		if err != nil {
			return nil, fmt.Errorf("%w: signing failed: %v", ErrSettlementFailed, err)
		}

		resp, err = f.post(ctx, input, artifact)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: facilitator responded with %d", ErrSettlementFailed, resp.StatusCode)
	}

	return decodeReceipt(resp)
}

func (f *HTTPFacilitator) post(ctx context.Context, input ChargeInput, artifact string) (*http.Response, error) {
	body, err := json.Marshal(chargeRequest{
		PayerAddr:   input.PayerAddr,
		RecvAddr:    input.RecvAddr,
		AmountMicro: input.AmountMicro,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if artifact != "" {
		req.Header.Set(paymentHeader, artifact)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementFailed, err)
	}
	return resp, nil
}

func decodeTerms(resp *http.Response) (PaymentTerms, error) {
	var challenge challengeBody
	if err := json.NewDecoder(resp.Body).Decode(&challenge); err != nil {
		return PaymentTerms{}, fmt.Errorf("%w: undecodable 402 terms: %v", ErrSettlementFailed, err)
	}
	if len(challenge.Accepts) == 0 {
		return PaymentTerms{}, fmt.Errorf("%w: 402 carried no payment terms", ErrSettlementFailed)
	}
	return challenge.Accepts[0], nil
}

// decodeReceipt reads the base64 receipt header the facilitator sets on a
// settled response.
func decodeReceipt(resp *http.Response) (*Receipt, error) {
	encoded := resp.Header.Get(paymentResponseHeader)
	if encoded == "" {
		return nil, fmt.Errorf("%w: settled response missing receipt header", ErrSettlementFailed)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable receipt: %v", ErrSettlementFailed, err)
	}

	var receipt Receipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, fmt.Errorf("%w: undecodable receipt: %v", ErrSettlementFailed, err)
	}
	if receipt.TxHash == "" || receipt.AmountMicro <= 0 {
		return nil, fmt.Errorf("%w: receipt is incomplete", ErrSettlementFailed)
	}

	return &receipt, nil
}

package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// PaystackProvider initializes and verifies card/bank charges via the
// Paystack API.
type PaystackProvider struct {
	BaseURL   string
	SecretKey string
	client    *http.Client
}

func NewPaystackProvider(baseURL, secretKey string, timeout time.Duration) *PaystackProvider {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PaystackProvider{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
	}
}

type paystackInitReq struct {
	Email       string                 `json:"email"`
	Amount      int64                  `json:"amount"` // kobo
	Currency    string                 `json:"currency,omitempty"`
	Reference   string                 `json:"reference"`
	CallbackURL string                 `json:"callback_url,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type paystackInitResp struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// InitializeCharge creates a Paystack transaction and returns the hosted checkout URL.
func (p *PaystackProvider) InitializeCharge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	payload := paystackInitReq{
		Email:       req.Email,
		Amount:      req.AmountKobo,
		Currency:    req.Currency,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	}
	body, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.SecretKey)
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: initialize: %v", ErrGateway, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Printf("[Paystack] initialize ref=%s status=%d body=%s", req.Reference, resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("%w: initialize: %d %s", ErrGateway, resp.StatusCode, string(respBody))
	}
	var out paystackInitResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("%w: initialize decode: %v", ErrGateway, err)
	}
	if !out.Status || out.Data.AuthorizationURL == "" {
		return nil, fmt.Errorf("%w: initialize rejected: %s", ErrGateway, out.Message)
	}
	return &ChargeResponse{
		Reference:   out.Data.Reference,
		CheckoutURL: out.Data.AuthorizationURL,
		AccessCode:  out.Data.AccessCode,
	}, nil
}

type paystackVerifyResp struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status   string `json:"status"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		PaidAt   string `json:"paid_at"`
	} `json:"data"`
}

// VerifyCharge fetches the gateway's authoritative status for a reference.
func (p *PaystackProvider) VerifyCharge(ctx context.Context, reference string) (*VerifyResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.BaseURL+"/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.SecretKey)
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: verify: %v", ErrGateway, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Printf("[Paystack] verify ref=%s status=%d body=%s", reference, resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("%w: verify: %d %s", ErrGateway, resp.StatusCode, string(respBody))
	}
	var out paystackVerifyResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("%w: verify decode: %v", ErrGateway, err)
	}
	if !out.Status {
		return nil, fmt.Errorf("%w: verify rejected: %s", ErrGateway, out.Message)
	}
	return &VerifyResponse{
		Status:     out.Data.Status,
		AmountKobo: out.Data.Amount,
		Currency:   out.Data.Currency,
		PaidAt:     out.Data.PaidAt,
		Raw:        json.RawMessage(respBody),
	}, nil
}

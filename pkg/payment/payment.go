package payment

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrGateway wraps any provider-side failure: non-2xx responses, malformed
// payloads, transport errors. Callers treat it as "payment attempt failed,
// transaction stays auditable".
var ErrGateway = errors.New("payment gateway error")

type ChargeRequest struct {
	Reference   string // our unique gateway-facing reference
	Email       string
	AmountKobo  int64
	Currency    string
	CallbackURL string
	Metadata    map[string]interface{}
}

type ChargeResponse struct {
	Reference   string
	CheckoutURL string
	AccessCode  string
}

// VerifyResponse carries the gateway's authoritative view of a charge.
type VerifyResponse struct {
	Status     string // success | failed | abandoned | pending ...
	AmountKobo int64
	Currency   string
	PaidAt     string
	Raw        json.RawMessage
}

func (v *VerifyResponse) Succeeded() bool {
	return v.Status == "success"
}

type Provider interface {
	InitializeCharge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error)
	VerifyCharge(ctx context.Context, reference string) (*VerifyResponse, error)
}

package payment

import (
	"context"
	"encoding/json"
	"strings"
)

// StubProvider is a no-op provider for development and tests: every charge
// gets a fake checkout URL and verifies as successful.
type StubProvider struct{}

func NewStubProvider() *StubProvider { return &StubProvider{} }

func (s *StubProvider) InitializeCharge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	return &ChargeResponse{
		Reference:   req.Reference,
		CheckoutURL: "https://checkout.stub.local/" + req.Reference,
	}, nil
}

func (s *StubProvider) VerifyCharge(ctx context.Context, reference string) (*VerifyResponse, error) {
	status := "success"
	if strings.HasPrefix(reference, "fail_") {
		status = "failed"
	}
	return &VerifyResponse{
		Status: status,
		Raw:    json.RawMessage(`{"stub":true}`),
	}, nil
}

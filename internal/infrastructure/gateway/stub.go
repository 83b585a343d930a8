package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/soumabha1987/yn-dev-sub000/internal/domain/port"
)

// StubGateway is a development/test provider. It approves every charge
// except those against a configured decline reference, optionally after a
// fixed delay that honours ctx.
type StubGateway struct {
	declined map[string]struct{}
	delay    time.Duration
}

// NewStubGateway creates a stub that declines the given profile references.
func NewStubGateway(delay time.Duration, declineRefs ...string) *StubGateway {
	declined := make(map[string]struct{}, len(declineRefs))
	for _, ref := range declineRefs {
		declined[ref] = struct{}{}
	}
	return &StubGateway{declined: declined, delay: delay}
}

type stubResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	Reason      string `json:"reason,omitempty"`
}

func (g *StubGateway) Charge(ctx context.Context, req port.ChargeRequest) (port.ChargeResult, error) {
	if req.ProfileRef == "" {
		return port.ChargeResult{}, fmt.Errorf("profile reference is required")
	}
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return port.ChargeResult{}, ctx.Err()
		case <-timer.C:
		}
	}

	resp := stubResponse{
		ID:          "stub_" + uuid.New().String(),
		Status:      "approved",
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
	}
	if _, ok := g.declined[req.ProfileRef]; ok || req.AmountMinor <= 0 {
		resp.Status = "declined"
		resp.Reason = "do_not_honor"
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return port.ChargeResult{}, fmt.Errorf("marshal stub response: %w", err)
	}

	if resp.Status != "approved" {
		return port.ChargeResult{Success: false, RawResponse: raw, FailureReason: resp.Reason}, nil
	}
	return port.ChargeResult{Success: true, GatewayTransactionID: resp.ID, RawResponse: raw}, nil
}

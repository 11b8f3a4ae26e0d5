// Package gateway models the external payment processor consulted during
// bill settlement. Every attempt returns exactly one of success or failure,
// synchronously; callers must not assume anything about the distribution.
package gateway

import (
	"context"
	"encoding/hex"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Result struct {
	Succeeded   bool
	ProviderRef string
}

type Gateway interface {
	Attempt(ctx context.Context, amount decimal.Decimal, reference string) (Result, error)
}

// RandomGateway stands in for a real processor, succeeding with a fixed
// probability. Production wiring replaces it with HTTPGateway.
type RandomGateway struct {
	successRate float64
}

func NewRandomGateway(successRate float64) *RandomGateway {
	return &RandomGateway{successRate: successRate}
}

func (g *RandomGateway) Attempt(_ context.Context, _ decimal.Decimal, _ string) (Result, error) {
	return Result{
		Succeeded:   rand.Float64() < g.successRate,
		ProviderRef: newProviderRef(),
	}, nil
}

func newProviderRef() string {
	u := uuid.New()
	return "mock_pay_" + hex.EncodeToString(u[:])[:10]
}

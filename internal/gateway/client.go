package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vaish4596/banking-app/internal/logging"
)

// HTTPGateway talks to a payment processor over HTTP. The processor answers
// each attempt synchronously with a final outcome.
type HTTPGateway struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPGateway(baseURL string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type attemptPayload struct {
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
}

type attemptResponse struct {
	Succeeded   bool   `json:"succeeded"`
	ProviderRef string `json:"provider_ref"`
}

func (g *HTTPGateway) Attempt(ctx context.Context, amount decimal.Decimal, reference string) (Result, error) {
	log := logging.FromContext(ctx)

	body, err := json.Marshal(attemptPayload{Amount: amount, Reference: reference})
	if err != nil {
		return Result{}, fmt.Errorf("Attempt: marshal: %w", err)
	}

	url := g.baseURL + "/attempt"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("Attempt: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("Attempt: send: %w", err)
	}
	defer resp.Body.Close()

	log.Info("gateway response received",
		"status", resp.StatusCode,
		"reference", reference,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("Attempt: gateway returned %d: %s", resp.StatusCode, respBody)
	}

	var out attemptResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("Attempt: decode: %w", err)
	}

	return Result{Succeeded: out.Succeeded, ProviderRef: out.ProviderRef}, nil
}

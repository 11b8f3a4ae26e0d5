// mock-gateway simulates the external payment processor: every attempt is
// answered synchronously, succeeding roughly three times out of four.
package main

import (
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vaish4596/banking-app/internal/logging"
)

const successRate = 0.75

type attemptRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
}

type attemptResponse struct {
	Succeeded   bool   `json:"succeeded"`
	ProviderRef string `json:"provider_ref"`
}

func main() {
	logging.Init("mock-gateway", "info", os.Getenv("APP_ENV"))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
			slog.Error("failed to write health response", "error", err)
		}
	})

	mux.HandleFunc("POST /attempt", func(w http.ResponseWriter, r *http.Request) {
		var req attemptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		u := uuid.New()
		resp := attemptResponse{
			Succeeded:   rand.Float64() < successRate,
			ProviderRef: "mock_pay_" + hex.EncodeToString(u[:])[:10],
		}

		slog.Info("payment attempt",
			"reference", req.Reference,
			"amount", req.Amount,
			"succeeded", resp.Succeeded,
			"provider_ref", resp.ProviderRef,
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("failed to write attempt response", "error", err)
		}
	})

	addr := ":8081"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}

	slog.Info("mock gateway started", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

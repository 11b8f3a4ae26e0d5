package domain

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{name: "positive integer", amount: "100"},
		{name: "positive two decimals", amount: "100.50"},
		{name: "smallest unit", amount: "0.01"},
		{name: "trailing zeros beyond scale are fine", amount: "1.2300"},
		{name: "zero", amount: "0", wantErr: true},
		{name: "negative", amount: "-5.00", wantErr: true},
		{name: "three decimal places", amount: "1.005", wantErr: true},
		{name: "sub-cent fraction", amount: "0.001", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			err := ValidateAmount(amount)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateAmount_RejectsNonNumericInput(t *testing.T) {
	for _, raw := range []string{"NaN", "Inf", "-Inf", "abc", ""} {
		_, err := decimal.NewFromString(raw)
		assert.Error(t, err, "input %q must not parse as an amount", raw)
	}
}

func TestNewReferenceID_Format(t *testing.T) {
	ref := NewReferenceID()
	require.Len(t, ref, 32)
	for _, c := range ref {
		assert.True(t, (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f'), "unexpected character %q", c)
	}
}

func TestNewReferenceID_UniqueUnderConcurrency(t *testing.T) {
	const workers = 8
	const perWorker = 2000

	var wg sync.WaitGroup
	results := make(chan string, workers*perWorker)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				results <- NewReferenceID()
			}
		}()
	}

	wg.Wait()
	close(results)

	seen := make(map[string]struct{}, workers*perWorker)
	for ref := range results {
		_, dup := seen[ref]
		require.False(t, dup, "duplicate reference id %s", ref)
		seen[ref] = struct{}{}
	}
	assert.Len(t, seen, workers*perWorker)
}

package lifi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whisperfi/whisperd/pkg/models"
)

func quoteFixture(toAmount string, withTx bool) map[string]interface{} {
	fixture := map[string]interface{}{
		"id": "q-123",
		"action": map[string]interface{}{
			"fromToken":  map[string]interface{}{"symbol": "USDC"},
			"toToken":    map[string]interface{}{"symbol": "USDC"},
			"fromAmount": "1000000",
		},
		"estimate": map[string]interface{}{
			"toAmount":          toAmount,
			"gasCosts":          []map[string]interface{}{{"amountUSD": "4.20"}},
			"executionDuration": 90,
		},
		"toolDetails": map[string]interface{}{"name": "across"},
	}
	if withTx {
		fixture["transactionRequest"] = map[string]interface{}{
			"to":    "0x1111111111111111111111111111111111111111",
			"data":  "0xdeadbeef",
			"value": "",
		}
	}
	return fixture
}

func TestGetQuote(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quote", r.URL.Path)
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		json.NewEncoder(w).Encode(quoteFixture("995000", true))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	quote, err := client.GetQuote(context.Background(), models.QuoteRequest{
		FromChainID: 1,
		ToChainID:   42161,
		FromToken:   "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		ToToken:     "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
		FromAmount:  "1000000",
		FromAddress: "0x2222222222222222222222222222222222222222",
	})
	require.NoError(t, err)

	assert.Equal(t, "1", gotQuery["fromChain"])
	assert.Equal(t, "42161", gotQuery["toChain"])
	assert.Equal(t, "1000000", gotQuery["fromAmount"])

	assert.Equal(t, "q-123", quote.ID)
	assert.Equal(t, "USDC", quote.FromToken)
	assert.Equal(t, "995000", quote.ToAmount)
	assert.Equal(t, "4.20", quote.EstimatedGas)
	assert.Equal(t, 90, quote.EstimatedTime)
	assert.Equal(t, "across", quote.Route)

	require.NotNil(t, quote.TransactionRequest)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", quote.TransactionRequest.To)
	assert.Equal(t, 1, quote.TransactionRequest.ChainID)
	// Missing wire fields get safe defaults
	assert.Equal(t, "0", quote.TransactionRequest.Value)
	assert.Equal(t, "500000", quote.TransactionRequest.GasLimit)
}

func TestGetQuoteWithoutTransactionRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(quoteFixture("995000", false))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	quote, err := client.GetQuote(context.Background(), models.QuoteRequest{FromChainID: 1, ToChainID: 10})
	require.NoError(t, err)
	assert.Nil(t, quote.TransactionRequest)
}

func TestGetQuoteDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"action": map[string]interface{}{
				"fromToken":  map[string]interface{}{"symbol": "ETH"},
				"toToken":    map[string]interface{}{"symbol": "ETH"},
				"fromAmount": "1",
			},
			"estimate": map[string]interface{}{"toAmount": "1"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	quote, err := client.GetQuote(context.Background(), models.QuoteRequest{FromChainID: 1, ToChainID: 10})
	require.NoError(t, err)

	assert.NotEmpty(t, quote.ID)
	assert.Equal(t, "0", quote.EstimatedGas)
	assert.Equal(t, 120, quote.EstimatedTime)
	assert.Equal(t, "LI.FI Aggregated", quote.Route)
}

func TestGetQuoteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no route found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.GetQuote(context.Background(), models.QuoteRequest{FromChainID: 1, ToChainID: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestGetObfuscatedQuote(t *testing.T) {
	var requests []map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := map[string]string{}
		for k := range r.URL.Query() {
			q[k] = r.URL.Query().Get(k)
		}
		requests = append(requests, q)

		toAmount := "500000"
		if len(requests) == 2 {
			toAmount = "498000"
		}
		json.NewEncoder(w).Encode(quoteFixture(toAmount, true))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	result, err := client.GetObfuscatedQuote(context.Background(), models.QuoteRequest{
		FromChainID: 1,
		ToChainID:   42161,
		FromToken:   "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		ToToken:     "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
		FromAmount:  "1000000",
		FromAddress: "0x2222222222222222222222222222222222222222",
	}, 0)
	require.NoError(t, err)
	require.Len(t, requests, 2)

	// Leg 1 bridges into USDC on the default intermediate chain
	assert.Equal(t, "10", requests[0]["toChain"])
	assert.Equal(t, intermediateUSDC, requests[0]["toToken"])

	// Leg 2 starts on the intermediate chain with leg 1's output
	assert.Equal(t, "10", requests[1]["fromChain"])
	assert.Equal(t, "42161", requests[1]["toChain"])
	assert.Equal(t, intermediateUSDC, requests[1]["fromToken"])
	assert.Equal(t, "500000", requests[1]["fromAmount"])

	assert.Equal(t, "500000", result.Leg1.ToAmount)
	assert.Equal(t, "498000", result.Leg2.ToAmount)
}

func TestGetObfuscatedQuoteLegFailure(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			http.Error(w, "no route", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(quoteFixture("500000", true))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	_, err := client.GetObfuscatedQuote(context.Background(), models.QuoteRequest{
		FromChainID: 1,
		ToChainID:   42161,
	}, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leg 2")
}

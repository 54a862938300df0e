package lifi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/whisperfi/whisperd/pkg/logger"
	"github.com/whisperfi/whisperd/pkg/metrics"
	"github.com/whisperfi/whisperd/pkg/models"
)

const (
	// DefaultBaseURL is the public LI.FI quote API
	DefaultBaseURL = "https://li.quest/v1"

	// DefaultIntermediateChainID is the chain obfuscated routes hop
	// through when none is specified (Optimism)
	DefaultIntermediateChainID = 10

	// intermediateUSDC is the USDC deployment on Optimism used as the
	// obfuscation leg token
	intermediateUSDC = "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85"

	defaultTimeout = 15 * time.Second
)

// Client fetches cross-chain quotes from the LI.FI aggregator
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient creates a quote client. An empty baseURL selects the public
// API endpoint.
func NewClient(baseURL string, log logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: log,
	}
}

// Wire types for the subset of the quote response we consume
type wireToken struct {
	Symbol string `json:"symbol"`
}

type wireAction struct {
	FromToken  wireToken `json:"fromToken"`
	ToToken    wireToken `json:"toToken"`
	FromAmount string    `json:"fromAmount"`
}

type wireGasCost struct {
	AmountUSD string `json:"amountUSD"`
}

type wireEstimate struct {
	ToAmount          string        `json:"toAmount"`
	GasCosts          []wireGasCost `json:"gasCosts"`
	ExecutionDuration int           `json:"executionDuration"`
}

type wireToolDetails struct {
	Name string `json:"name"`
}

type wireTxRequest struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	GasLimit string `json:"gasLimit"`
}

type wireQuote struct {
	ID                 string           `json:"id"`
	Action             wireAction       `json:"action"`
	Estimate           wireEstimate     `json:"estimate"`
	ToolDetails        *wireToolDetails `json:"toolDetails"`
	TransactionRequest *wireTxRequest   `json:"transactionRequest"`
}

// GetQuote requests a route for the given transfer. A quote may come back
// without a transaction request; callers must treat that as informational.
func (c *Client) GetQuote(ctx context.Context, req models.QuoteRequest) (models.Quote, error) {
	params := url.Values{}
	params.Set("fromChain", strconv.Itoa(req.FromChainID))
	params.Set("toChain", strconv.Itoa(req.ToChainID))
	params.Set("fromToken", req.FromToken)
	params.Set("toToken", req.ToToken)
	params.Set("fromAmount", req.FromAmount)
	params.Set("fromAddress", req.FromAddress)

	endpoint := fmt.Sprintf("%s/quote?%s", c.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Quote{}, fmt.Errorf("failed to create quote request: %v", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.QuoteFailures.Inc()
		return models.Quote{}, fmt.Errorf("failed to get cross-chain quote: %v", err)
	}
	defer resp.Body.Close()
	metrics.QuoteLatency.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		metrics.QuoteFailures.Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return models.Quote{}, fmt.Errorf("quote request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var wire wireQuote
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		metrics.QuoteFailures.Inc()
		return models.Quote{}, fmt.Errorf("failed to decode quote response: %v", err)
	}

	quote := models.Quote{
		ID:            wire.ID,
		FromChainID:   req.FromChainID,
		ToChainID:     req.ToChainID,
		FromToken:     wire.Action.FromToken.Symbol,
		ToToken:       wire.Action.ToToken.Symbol,
		FromAmount:    wire.Action.FromAmount,
		ToAmount:      wire.Estimate.ToAmount,
		EstimatedGas:  "0",
		EstimatedTime: wire.Estimate.ExecutionDuration,
		Route:         "LI.FI Aggregated",
	}
	if quote.ID == "" {
		quote.ID = "quote-" + uuid.NewString()
	}
	if len(wire.Estimate.GasCosts) > 0 && wire.Estimate.GasCosts[0].AmountUSD != "" {
		quote.EstimatedGas = wire.Estimate.GasCosts[0].AmountUSD
	}
	if quote.EstimatedTime <= 0 {
		quote.EstimatedTime = 120
	}
	if wire.ToolDetails != nil && wire.ToolDetails.Name != "" {
		quote.Route = wire.ToolDetails.Name
	}
	if wire.TransactionRequest != nil {
		txReq := &models.TransactionRequest{
			To:       wire.TransactionRequest.To,
			Data:     wire.TransactionRequest.Data,
			Value:    wire.TransactionRequest.Value,
			ChainID:  req.FromChainID,
			GasLimit: wire.TransactionRequest.GasLimit,
		}
		if txReq.Value == "" {
			txReq.Value = "0"
		}
		if txReq.GasLimit == "" {
			txReq.GasLimit = "500000"
		}
		quote.TransactionRequest = txReq
	}

	c.logger.DebugWithChain(req.FromChainID, "Quote %s: %s %s -> %s %s via %s",
		quote.ID, quote.FromAmount, quote.FromToken, quote.ToAmount, quote.ToToken, quote.Route)

	return quote, nil
}

// GetObfuscatedQuote routes a transfer through an intermediate chain so
// the destination is harder to link to the source. Leg 1 bridges into
// USDC on the intermediate chain; leg 2 carries its output onward.
func (c *Client) GetObfuscatedQuote(ctx context.Context, req models.QuoteRequest, intermediateChainID int) (models.ObfuscatedQuote, error) {
	if intermediateChainID == 0 {
		intermediateChainID = DefaultIntermediateChainID
	}

	leg1Req := req
	leg1Req.ToChainID = intermediateChainID
	leg1Req.ToToken = intermediateUSDC
	leg1, err := c.GetQuote(ctx, leg1Req)
	if err != nil {
		return models.ObfuscatedQuote{}, fmt.Errorf("failed to quote obfuscation leg 1: %v", err)
	}

	leg2Req := models.QuoteRequest{
		FromChainID: intermediateChainID,
		ToChainID:   req.ToChainID,
		FromToken:   intermediateUSDC,
		ToToken:     req.ToToken,
		FromAmount:  leg1.ToAmount,
		FromAddress: req.FromAddress,
	}
	leg2, err := c.GetQuote(ctx, leg2Req)
	if err != nil {
		return models.ObfuscatedQuote{}, fmt.Errorf("failed to quote obfuscation leg 2: %v", err)
	}

	return models.ObfuscatedQuote{Leg1: leg1, Leg2: leg2}, nil
}

package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whisperfi/whisperd/pkg/circuitbreaker"
	"github.com/whisperfi/whisperd/pkg/models"
	"github.com/whisperfi/whisperd/pkg/ratelimit"
)

type fakeOracle struct {
	parseResult  models.IntentParseResult
	parseErr     error
	privacy      models.PrivacyAnalysis
	privacyErr   error
	plan         models.ExecutionPlan
	planErr      error
	parseCalls   int
	privacyCalls int
	planCalls    int
}

func (f *fakeOracle) ParseIntent(_ context.Context, _ string, _ *models.WalletContext) (models.IntentParseResult, error) {
	f.parseCalls++
	return f.parseResult, f.parseErr
}

func (f *fakeOracle) AnalyzePrivacy(_ context.Context, _ models.ParsedIntent) (models.PrivacyAnalysis, error) {
	f.privacyCalls++
	return f.privacy, f.privacyErr
}

func (f *fakeOracle) OptimizeStrategy(_ context.Context, _ models.ParsedIntent, _ models.PrivacyAnalysis) (models.ExecutionPlan, error) {
	f.planCalls++
	return f.plan, f.planErr
}

type fakeQuotes struct {
	quote    models.Quote
	obf      models.ObfuscatedQuote
	err      error
	calls    int
	obfCalls int
	lastReq  models.QuoteRequest
}

func (f *fakeQuotes) GetQuote(_ context.Context, req models.QuoteRequest) (models.Quote, error) {
	f.calls++
	f.lastReq = req
	return f.quote, f.err
}

func (f *fakeQuotes) GetObfuscatedQuote(_ context.Context, req models.QuoteRequest, _ int) (models.ObfuscatedQuote, error) {
	f.obfCalls++
	f.lastReq = req
	return f.obf, f.err
}

func sameChainOracle() *fakeOracle {
	return &fakeOracle{
		parseResult: models.IntentParseResult{
			Intent: models.ParsedIntent{
				Type:      models.IntentSwap,
				FromToken: models.TokenAmount{Token: "ETH", Amount: "1", ChainID: 8453},
				ToToken:   models.TokenAmount{Token: "USDC", ChainID: 8453},
			},
		},
		privacy: models.PrivacyAnalysis{OverallScore: 60},
		plan: models.ExecutionPlan{
			ID:           "plan-1",
			Strategy:     models.StrategySplit,
			Steps:        []models.ExecutionStep{{ID: "step-0"}, {ID: "step-1"}},
			PrivacyScore: 55,
		},
	}
}

func crossChainOracle() *fakeOracle {
	oracle := sameChainOracle()
	oracle.parseResult.Intent.Type = models.IntentBridge
	oracle.parseResult.Intent.FromToken = models.TokenAmount{Token: "USDC", Amount: "100", ChainID: 8453}
	oracle.parseResult.Intent.ToToken = models.TokenAmount{Token: "USDC", ChainID: 42161}
	return oracle
}

func connectedWallet() *models.WalletContext {
	return &models.WalletContext{Address: "0x1111111111111111111111111111111111111111", ChainID: 8453}
}

func TestProcessRunsStagesInOrder(t *testing.T) {
	oracle := sameChainOracle()
	a := New(oracle, nil)

	var stages []Stage
	result, err := a.Process(context.Background(), "swap 1 eth to usdc", nil, func(stage Stage, _ string) {
		stages = append(stages, stage)
	})
	require.NoError(t, err)

	assert.Equal(t, []Stage{StageParsing, StageAnalyzing, StageOptimizing}, stages)
	assert.Equal(t, 1, oracle.parseCalls)
	assert.Equal(t, 1, oracle.privacyCalls)
	assert.Equal(t, 1, oracle.planCalls)
	assert.Nil(t, result.Quote)
	assert.Contains(t, result.Summary, "SWAP")
	assert.Contains(t, result.Summary, "55/100")
	assert.Contains(t, result.Summary, "split with 2 steps")
}

func TestProcessFetchesQuoteForCrossChain(t *testing.T) {
	oracle := crossChainOracle()
	quotes := &fakeQuotes{quote: models.Quote{
		ID:         "quote-1",
		FromAmount: "100000000",
		ToAmount:   "99000000",
		Route:      "LI.FI Aggregated",
	}}
	a := New(oracle, quotes)

	var stages []Stage
	result, err := a.Process(context.Background(), "bridge 100 usdc to arbitrum", connectedWallet(), func(stage Stage, _ string) {
		stages = append(stages, stage)
	})
	require.NoError(t, err)

	assert.Equal(t, []Stage{StageParsing, StageAnalyzing, StageOptimizing, StageQuoting}, stages)
	require.NotNil(t, result.Quote)
	assert.Equal(t, "quote-1", result.Quote.ID)
	assert.Contains(t, result.Summary, "LI.FI Aggregated")

	// Amount converted to USDC base units, route addressed to the wallet
	assert.Equal(t, "100000000", quotes.lastReq.FromAmount)
	assert.Equal(t, connectedWallet().Address, quotes.lastReq.FromAddress)
	assert.Equal(t, 8453, quotes.lastReq.FromChainID)
	assert.Equal(t, 42161, quotes.lastReq.ToChainID)
}

func TestProcessQuoteUsesPlaceholderWithoutWallet(t *testing.T) {
	quotes := &fakeQuotes{quote: models.Quote{ID: "quote-1"}}
	a := New(crossChainOracle(), quotes)

	result, err := a.Process(context.Background(), "bridge 100 usdc to arbitrum", nil, nil)
	require.NoError(t, err)

	require.NotNil(t, result.Quote)
	assert.Equal(t, 1, quotes.calls)
	assert.Equal(t, PlaceholderFromAddress, quotes.lastReq.FromAddress)
}

func TestProcessQuotesSameChainBridgeIntent(t *testing.T) {
	oracle := sameChainOracle()
	oracle.parseResult.Intent.Type = models.IntentBridge
	oracle.parseResult.Intent.FromToken = models.TokenAmount{Token: "USDC", Amount: "100", ChainID: 8453}
	oracle.parseResult.Intent.ToToken = models.TokenAmount{Token: "USDC", ChainID: 8453}
	quotes := &fakeQuotes{quote: models.Quote{ID: "quote-1"}}
	a := New(oracle, quotes)

	result, err := a.Process(context.Background(), "bridge 100 usdc", connectedWallet(), nil)
	require.NoError(t, err)

	require.NotNil(t, result.Quote)
	assert.Equal(t, 1, quotes.calls)
}

func TestProcessFetchesObfuscatedQuoteForCrossChainStrategy(t *testing.T) {
	oracle := crossChainOracle()
	oracle.plan.Strategy = models.StrategyCrossChain
	quotes := &fakeQuotes{obf: models.ObfuscatedQuote{
		Leg1: models.Quote{ID: "leg-1", FromChainID: 8453, ToChainID: 10},
		Leg2: models.Quote{ID: "leg-2", FromChainID: 10, ToChainID: 42161, ToAmount: "98000000"},
	}}
	a := New(oracle, quotes)

	result, err := a.Process(context.Background(), "bridge 100 usdc to arbitrum privately", connectedWallet(), nil)
	require.NoError(t, err)

	assert.Nil(t, result.Quote)
	require.NotNil(t, result.ObfuscatedQuote)
	assert.Equal(t, "leg-1", result.ObfuscatedQuote.Leg1.ID)
	assert.Equal(t, "leg-2", result.ObfuscatedQuote.Leg2.ID)
	assert.Equal(t, 1, quotes.obfCalls)
	assert.Equal(t, 0, quotes.calls)
	assert.Contains(t, result.Summary, "chain 10")
	assert.Contains(t, result.Summary, "98000000")
}

func TestProcessStreamEmitsObfuscatedQuoteEvent(t *testing.T) {
	oracle := crossChainOracle()
	oracle.plan.Strategy = models.StrategyCrossChain
	quotes := &fakeQuotes{obf: models.ObfuscatedQuote{
		Leg1: models.Quote{ID: "leg-1"},
		Leg2: models.Quote{ID: "leg-2"},
	}}
	a := New(oracle, quotes)

	var events []string
	var quotePayload interface{}
	_, err := a.ProcessStream(context.Background(), "bridge 100 usdc to arbitrum privately", connectedWallet(), nil,
		func(event string, payload interface{}) {
			events = append(events, event)
			if event == EventQuote {
				quotePayload = payload
			}
		})
	require.NoError(t, err)

	assert.Equal(t, []string{EventIntent, EventPrivacy, EventPlan, EventQuote}, events)
	obf, ok := quotePayload.(*models.ObfuscatedQuote)
	require.True(t, ok)
	assert.Equal(t, "leg-1", obf.Leg1.ID)
}

func TestProcessQuoteFailureIsNonFatal(t *testing.T) {
	quotes := &fakeQuotes{err: errors.New("provider down")}
	a := New(crossChainOracle(), quotes)

	result, err := a.Process(context.Background(), "bridge 100 usdc to arbitrum", connectedWallet(), nil)
	require.NoError(t, err)

	assert.Nil(t, result.Quote)
	assert.Equal(t, 1, quotes.calls)
	assert.NotEmpty(t, result.Summary)
}

func TestProcessSkipsQuoteWhenBreakerOpen(t *testing.T) {
	quotes := &fakeQuotes{}
	breaker := circuitbreaker.New(1, time.Minute, time.Minute, nil)
	breaker.Failure()
	a := New(crossChainOracle(), quotes, WithBreaker(breaker))

	result, err := a.Process(context.Background(), "bridge 100 usdc to arbitrum", connectedWallet(), nil)
	require.NoError(t, err)

	assert.Nil(t, result.Quote)
	assert.Equal(t, 0, quotes.calls)
}

func TestProcessBreakerTripsAfterRepeatedFailures(t *testing.T) {
	quotes := &fakeQuotes{err: errors.New("provider down")}
	breaker := circuitbreaker.New(2, time.Minute, time.Minute, nil)
	a := New(crossChainOracle(), quotes, WithBreaker(breaker))

	for i := 0; i < 3; i++ {
		_, err := a.Process(context.Background(), "bridge 100 usdc to arbitrum", connectedWallet(), nil)
		require.NoError(t, err)
	}

	// Third run found the circuit open and never reached the provider
	assert.Equal(t, 2, quotes.calls)
	assert.True(t, breaker.Open())
}

func TestProcessStreamEmitsEventsInOrder(t *testing.T) {
	quotes := &fakeQuotes{quote: models.Quote{ID: "quote-1", Route: "LI.FI Aggregated"}}
	a := New(crossChainOracle(), quotes)

	var events []string
	_, err := a.ProcessStream(context.Background(), "bridge 100 usdc to arbitrum", connectedWallet(), nil,
		func(event string, _ interface{}) {
			events = append(events, event)
		})
	require.NoError(t, err)

	assert.Equal(t, []string{EventIntent, EventPrivacy, EventPlan, EventQuote}, events)
}

func TestProcessStreamSkipsQuoteEventOnFailure(t *testing.T) {
	quotes := &fakeQuotes{err: errors.New("provider down")}
	a := New(crossChainOracle(), quotes)

	var events []string
	_, err := a.ProcessStream(context.Background(), "bridge 100 usdc to arbitrum", connectedWallet(), nil,
		func(event string, _ interface{}) {
			events = append(events, event)
		})
	require.NoError(t, err)

	assert.Equal(t, []string{EventIntent, EventPrivacy, EventPlan}, events)
}

func TestProcessParseErrorPropagatesUnwrapped(t *testing.T) {
	rateErr := &ratelimit.ErrRateLimited{Stats: ratelimit.UsageStats{Limit: 10, CallCount: 10}}
	oracle := &fakeOracle{parseErr: rateErr}
	a := New(oracle, nil)

	_, err := a.Process(context.Background(), "swap 1 eth", nil, nil)
	require.Error(t, err)

	var limited *ratelimit.ErrRateLimited
	require.True(t, errors.As(err, &limited))
	assert.Equal(t, 0, oracle.privacyCalls)
}

func TestProcessOptimizeErrorStopsPipeline(t *testing.T) {
	oracle := sameChainOracle()
	oracle.planErr = errors.New("oracle unavailable")
	a := New(oracle, nil)

	_, err := a.Process(context.Background(), "swap 1 eth to usdc", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 1, oracle.privacyCalls)
}

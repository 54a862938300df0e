package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/whisperfi/whisperd/pkg/ai"
	"github.com/whisperfi/whisperd/pkg/circuitbreaker"
	"github.com/whisperfi/whisperd/pkg/logger"
	"github.com/whisperfi/whisperd/pkg/metrics"
	"github.com/whisperfi/whisperd/pkg/models"
	"github.com/whisperfi/whisperd/pkg/tokens"
)

// Stage identifies a phase of the intent pipeline. Stages are advisory
// progress markers, not state the caller can act on.
type Stage string

const (
	StageParsing    Stage = "parsing_intent"
	StageAnalyzing  Stage = "analyzing_privacy"
	StageOptimizing Stage = "optimizing_strategy"
	StageQuoting    Stage = "fetching_quote"
)

// StageFunc receives progress notifications as the pipeline advances.
// It is called from the pipeline goroutine; keep it fast.
type StageFunc func(stage Stage, message string)

// Event names emitted as pipeline results materialize
const (
	EventIntent  = "intent"
	EventPrivacy = "privacy"
	EventPlan    = "plan"
	EventQuote   = "lifi"
)

// EventFunc receives a named payload as soon as the pipeline produces it
type EventFunc func(event string, payload interface{})

// QuoteClient fetches cross-chain routes: a single bridge leg or the
// two-leg route through an intermediate chain
type QuoteClient interface {
	GetQuote(ctx context.Context, req models.QuoteRequest) (models.Quote, error)
	GetObfuscatedQuote(ctx context.Context, req models.QuoteRequest, intermediateChainID int) (models.ObfuscatedQuote, error)
}

// PlaceholderFromAddress stands in for the sender when no wallet is
// connected, so quotes stay available before connecting
const PlaceholderFromAddress = "0x0000000000000000000000000000000000000001"

// Result is the full outcome of one intent request
type Result struct {
	Intent          models.IntentParseResult `json:"intentResult"`
	Privacy         models.PrivacyAnalysis   `json:"privacyAnalysis"`
	Plan            models.ExecutionPlan     `json:"executionPlan"`
	Quote           *models.Quote            `json:"lifiQuote,omitempty"`
	ObfuscatedQuote *models.ObfuscatedQuote  `json:"obfuscatedQuote,omitempty"`
	Summary         string                   `json:"summary"`
}

// Assistant runs the intent pipeline: parse, analyze, optimize, and for
// cross-chain intents an optional bridge quote. The quote stage is best
// effort; its failures degrade the result instead of failing it, and a
// circuit breaker skips the quote provider entirely while it is down.
type Assistant struct {
	oracle  ai.Oracle
	quotes  QuoteClient
	breaker *circuitbreaker.Breaker
	logger  logger.Logger
}

// Option configures an Assistant
type Option func(*Assistant)

// WithLogger sets the pipeline logger
func WithLogger(log logger.Logger) Option {
	return func(a *Assistant) { a.logger = log }
}

// WithBreaker replaces the default quote-provider circuit breaker
func WithBreaker(b *circuitbreaker.Breaker) Option {
	return func(a *Assistant) { a.breaker = b }
}

// New creates an assistant. quotes may be nil, which disables the quote
// stage.
func New(oracle ai.Oracle, quotes QuoteClient, opts ...Option) *Assistant {
	a := &Assistant{
		oracle: oracle,
		quotes: quotes,
		logger: &logger.EmptyLogger{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.breaker == nil {
		a.breaker = circuitbreaker.New(3, 5*time.Minute, time.Minute, a.logger)
	}
	return a
}

// Process runs the full pipeline for one request. onStage may be nil.
// Oracle errors are returned unwrapped so callers can branch on typed
// errors such as the rate limiter's.
func (a *Assistant) Process(ctx context.Context, message string, wallet *models.WalletContext, onStage StageFunc) (Result, error) {
	return a.ProcessStream(ctx, message, wallet, onStage, nil)
}

// ProcessStream runs the pipeline like Process and additionally emits
// each intermediate result through onEvent as soon as it exists, for
// streaming transports. Both callbacks may be nil.
func (a *Assistant) ProcessStream(ctx context.Context, message string, wallet *models.WalletContext, onStage StageFunc, onEvent EventFunc) (Result, error) {
	start := time.Now()
	emit := func(stage Stage, msg string) {
		if onStage != nil {
			onStage(stage, msg)
		}
	}
	emitEvent := func(event string, payload interface{}) {
		if onEvent != nil {
			onEvent(event, payload)
		}
	}

	emit(StageParsing, "Understanding your request...")
	parsed, err := a.oracle.ParseIntent(ctx, message, wallet)
	if err != nil {
		metrics.IntentsProcessed.WithLabelValues("unknown", "error").Inc()
		return Result{}, err
	}
	intentType := string(parsed.Intent.Type)
	emitEvent(EventIntent, parsed)

	emit(StageAnalyzing, "Analyzing privacy risks...")
	privacy, err := a.oracle.AnalyzePrivacy(ctx, parsed.Intent)
	if err != nil {
		metrics.IntentsProcessed.WithLabelValues(intentType, "error").Inc()
		return Result{}, err
	}
	emitEvent(EventPrivacy, privacy)

	emit(StageOptimizing, "Building a privacy-optimized plan...")
	plan, err := a.oracle.OptimizeStrategy(ctx, parsed.Intent, privacy)
	if err != nil {
		metrics.IntentsProcessed.WithLabelValues(intentType, "error").Inc()
		return Result{}, err
	}
	emitEvent(EventPlan, plan)

	result := Result{Intent: parsed, Privacy: privacy, Plan: plan}

	if a.shouldQuote(parsed.Intent) {
		emit(StageQuoting, "Fetching a bridge route...")
		if plan.Strategy == models.StrategyCrossChain {
			result.ObfuscatedQuote = a.fetchObfuscatedQuote(ctx, parsed.Intent, wallet)
			if result.ObfuscatedQuote != nil {
				emitEvent(EventQuote, result.ObfuscatedQuote)
			}
		} else {
			result.Quote = a.fetchQuote(ctx, parsed.Intent, wallet)
			if result.Quote != nil {
				emitEvent(EventQuote, result.Quote)
			}
		}
	}

	result.Summary = summarize(result)

	metrics.IntentsProcessed.WithLabelValues(intentType, "success").Inc()
	metrics.IntentProcessingTime.WithLabelValues(intentType).Observe(time.Since(start).Seconds())
	return result, nil
}

// shouldQuote gates the quote stage: a configured provider and an
// intent that crosses chains or asks for a bridge outright
func (a *Assistant) shouldQuote(intent models.ParsedIntent) bool {
	if a.quotes == nil {
		return false
	}
	return intent.IsCrossChain() || intent.Type == models.IntentBridge
}

// buildQuoteRequest resolves tokens and amount into a provider request.
// Without a connected wallet the route is addressed to a placeholder
// sender so pricing still works before connecting.
func (a *Assistant) buildQuoteRequest(intent models.ParsedIntent, wallet *models.WalletContext) (models.QuoteRequest, bool) {
	fromAddr, ok := tokens.ResolveAddress(intent.FromToken.Token, intent.FromToken.ChainID)
	if !ok {
		a.logger.DebugWithChain(intent.FromToken.ChainID, "Unknown token %s, skipping quote", intent.FromToken.Token)
		return models.QuoteRequest{}, false
	}
	toAddr, ok := tokens.ResolveAddress(intent.ToToken.Token, intent.ToToken.ChainID)
	if !ok {
		a.logger.DebugWithChain(intent.ToToken.ChainID, "Unknown token %s, skipping quote", intent.ToToken.Token)
		return models.QuoteRequest{}, false
	}

	decimals := tokens.ResolveDecimals(intent.FromToken.Token, intent.FromToken.ChainID)
	amount, err := tokens.ToBaseUnits(intent.FromToken.Amount, decimals)
	if err != nil {
		a.logger.Debug("Invalid amount %s, skipping quote: %v", intent.FromToken.Amount, err)
		return models.QuoteRequest{}, false
	}

	fromAddress := PlaceholderFromAddress
	if wallet != nil && wallet.Address != "" {
		fromAddress = wallet.Address
	}

	return models.QuoteRequest{
		FromChainID: intent.FromToken.ChainID,
		ToChainID:   intent.ToToken.ChainID,
		FromToken:   fromAddr.Hex(),
		ToToken:     toAddr.Hex(),
		FromAmount:  amount.String(),
		FromAddress: fromAddress,
	}, true
}

// fetchQuote asks the provider for a route. Any failure is logged and
// swallowed; the pipeline result simply carries no quote.
func (a *Assistant) fetchQuote(ctx context.Context, intent models.ParsedIntent, wallet *models.WalletContext) *models.Quote {
	if !a.breaker.Allow() {
		a.logger.Debug("Quote provider circuit open, skipping quote")
		return nil
	}
	req, ok := a.buildQuoteRequest(intent, wallet)
	if !ok {
		return nil
	}

	quote, err := a.quotes.GetQuote(ctx, req)
	if err != nil {
		a.breaker.Failure()
		a.logger.ErrorWithChain(intent.FromToken.ChainID, "Quote request failed: %v", err)
		return nil
	}
	a.breaker.Success()
	return &quote
}

// fetchObfuscatedQuote asks for the two-leg route used by cross-chain
// obfuscation plans. The provider picks the intermediate chain.
func (a *Assistant) fetchObfuscatedQuote(ctx context.Context, intent models.ParsedIntent, wallet *models.WalletContext) *models.ObfuscatedQuote {
	if !a.breaker.Allow() {
		a.logger.Debug("Quote provider circuit open, skipping quote")
		return nil
	}
	req, ok := a.buildQuoteRequest(intent, wallet)
	if !ok {
		return nil
	}

	quote, err := a.quotes.GetObfuscatedQuote(ctx, req, 0)
	if err != nil {
		a.breaker.Failure()
		a.logger.ErrorWithChain(intent.FromToken.ChainID, "Obfuscated quote request failed: %v", err)
		return nil
	}
	a.breaker.Success()
	return &quote
}

// summarize builds the one-line response summary
func summarize(result Result) string {
	summary := fmt.Sprintf("Parsed %s intent (privacy score %d/100). Strategy: %s with %d steps.",
		result.Intent.Intent.Type, result.Plan.PrivacyScore, result.Plan.Strategy, len(result.Plan.Steps))
	if result.Quote != nil {
		summary += fmt.Sprintf(" Bridge route %s quotes %s out for %s in.",
			result.Quote.Route, result.Quote.ToAmount, result.Quote.FromAmount)
	}
	if result.ObfuscatedQuote != nil {
		summary += fmt.Sprintf(" Obfuscated route hops through chain %d and quotes %s out.",
			result.ObfuscatedQuote.Leg1.ToChainID, result.ObfuscatedQuote.Leg2.ToAmount)
	}
	return summary
}

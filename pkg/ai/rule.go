package ai

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/whisperfi/whisperd/pkg/metrics"
	"github.com/whisperfi/whisperd/pkg/models"
	"github.com/whisperfi/whisperd/pkg/ratelimit"
	"github.com/whisperfi/whisperd/pkg/strategy"
)

// Rough spot prices used to size trades when no market feed is wired in.
// Only the order of magnitude matters: the numbers drive strategy
// thresholds, not settlement.
var usdPrices = map[string]float64{
	"ETH":    3000,
	"WETH":   3000,
	"USDC":   1,
	"USDBC":  1,
	"USDC.E": 1,
	"USDT":   1,
	"DAI":    1,
	"ARB":    1,
}

var chainKeywords = map[string]int{
	"ethereum": 1,
	"mainnet":  1,
	"optimism": 10,
	"base":     8453,
	"arbitrum": 42161,
}

// RuleOracle is a deterministic Oracle built on the strategy engine. It
// keeps the pipeline fully functional without an API key and gives tests
// a predictable collaborator.
type RuleOracle struct {
	limiter *ratelimit.Limiter
}

var _ Oracle = (*RuleOracle)(nil)

// NewRuleOracle creates a rule-based oracle sharing the call budget
func NewRuleOracle(limiter *ratelimit.Limiter) *RuleOracle {
	return &RuleOracle{limiter: limiter}
}

// EstimateUSD sizes a trade in dollars from its token amount
func EstimateUSD(token, amount string) float64 {
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0
	}
	price, known := usdPrices[strings.ToUpper(token)]
	if !known {
		price = 1
	}
	return value * price
}

// ParseIntent extracts a structured intent with keyword heuristics:
// intent verbs, token symbols, chain names, privacy and urgency cues
func (r *RuleOracle) ParseIntent(_ context.Context, message string, wallet *models.WalletContext) (models.IntentParseResult, error) {
	if err := r.limiter.Check(); err != nil {
		metrics.RateLimitedRequests.Inc()
		return models.IntentParseResult{}, err
	}
	r.limiter.Record()
	metrics.OracleCalls.WithLabelValues(toolParseIntent, "success").Inc()

	lower := strings.ToLower(message)
	warnings := []string{}

	intentType := models.IntentSwap
	switch {
	case strings.Contains(lower, "bridge") || strings.Contains(lower, "move"):
		intentType = models.IntentBridge
	case strings.Contains(lower, "liquidity") || strings.Contains(lower, " lp "):
		intentType = models.IntentProvideLiquidity
	case strings.Contains(lower, "rebalance"):
		intentType = models.IntentRebalance
	case strings.Contains(lower, "yield") || strings.Contains(lower, "farm"):
		intentType = models.IntentYieldFarm
	}

	// Default to Base for same-chain operations; the wallet's chain wins
	// when connected
	fromChain := 8453
	if wallet != nil && wallet.ChainID != 0 {
		fromChain = wallet.ChainID
	}
	toChain := fromChain
	for keyword, chainID := range chainKeywords {
		if strings.Contains(lower, keyword) {
			if intentType == models.IntentBridge && chainID != fromChain {
				toChain = chainID
			} else if intentType != models.IntentBridge {
				fromChain = chainID
				toChain = chainID
			}
		}
	}

	amount := ""
	symbols := []string{}
	for _, word := range strings.Fields(lower) {
		word = strings.Trim(word, ".,!?;:()")
		if amount == "" {
			if _, err := strconv.ParseFloat(strings.ReplaceAll(word, ",", ""), 64); err == nil {
				amount = strings.ReplaceAll(word, ",", "")
				continue
			}
		}
		upper := strings.ToUpper(word)
		if _, known := usdPrices[upper]; known && !containsString(symbols, upper) {
			symbols = append(symbols, upper)
		}
	}
	if amount == "" {
		amount = "1"
		warnings = append(warnings, "No amount found in the request, assuming 1")
	}

	fromToken, toToken := "ETH", "USDC"
	switch len(symbols) {
	case 0:
		warnings = append(warnings, "No tokens recognized, assuming ETH to USDC")
	case 1:
		fromToken = symbols[0]
		if fromToken == "USDC" {
			toToken = "ETH"
		}
		warnings = append(warnings, fmt.Sprintf("Only one token recognized, assuming %s to %s", fromToken, toToken))
	default:
		fromToken, toToken = symbols[0], symbols[1]
	}

	privacyLevel := models.PrivacyEnhanced
	if strings.Contains(lower, "maximum privacy") || strings.Contains(lower, "max privacy") || strings.Contains(lower, "untraceable") {
		privacyLevel = models.PrivacyMaximum
	} else if strings.Contains(lower, "no privacy") || strings.Contains(lower, "cheapest") {
		privacyLevel = models.PrivacyStandard
	}

	urgency := models.UrgencyMedium
	if strings.Contains(lower, "asap") || strings.Contains(lower, "urgent") || strings.Contains(lower, "now") || strings.Contains(lower, "fast") {
		urgency = models.UrgencyHigh
	} else if strings.Contains(lower, "no rush") || strings.Contains(lower, "whenever") || strings.Contains(lower, "slowly") {
		urgency = models.UrgencyLow
	}

	intent := models.ParsedIntent{
		Type:                  intentType,
		FromToken:             models.TokenAmount{Token: fromToken, Amount: amount, ChainID: fromChain},
		ToToken:               models.TokenAmount{Token: toToken, Amount: "", ChainID: toChain},
		PrivacyLevel:          privacyLevel,
		SlippageTolerance:     0.005,
		Urgency:               urgency,
		AdditionalConstraints: []string{},
	}

	return models.IntentParseResult{
		Intent:     intent,
		Confidence: 0.6,
		Explanation: fmt.Sprintf("Rule-based parse: %s %s %s to %s with %s privacy",
			intent.Type, amount, fromToken, toToken, privacyLevel),
		Warnings: warnings,
	}, nil
}

// AnalyzePrivacy produces a deterministic risk picture sized by the trade
func (r *RuleOracle) AnalyzePrivacy(_ context.Context, intent models.ParsedIntent) (models.PrivacyAnalysis, error) {
	if err := r.limiter.Check(); err != nil {
		metrics.RateLimitedRequests.Inc()
		return models.PrivacyAnalysis{}, err
	}
	r.limiter.Record()
	metrics.OracleCalls.WithLabelValues(toolAnalyzePrivacy, "success").Inc()

	amountUSD := EstimateUSD(intent.FromToken.Token, intent.FromToken.Amount)
	severity := models.SeverityLow
	if amountUSD > 10000 {
		severity = models.SeverityHigh
	} else if amountUSD > 1000 {
		severity = models.SeverityMedium
	}

	risks := []models.PrivacyRisk{
		{
			Category:    models.RiskMEV,
			Severity:    severity,
			Description: "Public mempool submission exposes the order to MEV searchers",
			Mitigation:  "Submit through a private relay and split the order",
		},
		{
			Category:    models.RiskFrontRun,
			Severity:    severity,
			Description: "Visible pending swaps can be front-run before inclusion",
			Mitigation:  "Use tighter slippage and private submission",
		},
	}
	if intent.Type == models.IntentSwap {
		risks = append(risks, models.PrivacyRisk{
			Category:    models.RiskSandwich,
			Severity:    severity,
			Description: "Single large swap is a sandwich target around its pool",
			Mitigation:  "Split into random-sized chunks",
		})
	}
	if intent.IsCrossChain() || amountUSD > 10000 {
		risks = append(risks, models.PrivacyRisk{
			Category:    models.RiskInfoLeakage,
			Severity:    models.SeverityMedium,
			Description: "Trade size and destination are linkable across explorers",
			Mitigation:  "Route through an intermediate chain",
		})
	}
	if intent.PrivacyLevel != models.PrivacyStandard {
		risks = append(risks, models.PrivacyRisk{
			Category:    models.RiskTiming,
			Severity:    models.SeverityLow,
			Description: "Evenly timed chunks can be correlated back together",
			Mitigation:  "Randomize delays between chunks",
		})
	}

	score := 90
	for _, risk := range risks {
		switch risk.Severity {
		case models.SeverityCritical:
			score -= 30
		case models.SeverityHigh:
			score -= 20
		case models.SeverityMedium:
			score -= 10
		case models.SeverityLow:
			score -= 5
		}
	}
	if score < 10 {
		score = 10
	}

	rec := strategy.Recommend(amountUSD, intent.PrivacyLevel, intent.Urgency)
	optimized := strategy.Score(rec.Strategy, rec.NumSplits, rec.Strategy == models.StrategyDelayed, intent.IsCrossChain())
	improvement := optimized - score
	if improvement < 0 {
		improvement = 0
	}

	return models.PrivacyAnalysis{
		OverallScore: score,
		Risks:        risks,
		Recommendations: []string{
			rec.Reason,
			"Keep approvals scoped to the router in use",
		},
		StandardExposure:      "Full trade size, route and timing visible in the public mempool",
		OptimizedExposure:     "Individual chunks with randomized timing, unlinkable at a glance",
		ImprovementPercentage: improvement,
	}, nil
}

// OptimizeStrategy builds a plan from the decision table and splitter
func (r *RuleOracle) OptimizeStrategy(_ context.Context, intent models.ParsedIntent, _ models.PrivacyAnalysis) (models.ExecutionPlan, error) {
	if err := r.limiter.Check(); err != nil {
		metrics.RateLimitedRequests.Inc()
		return models.ExecutionPlan{}, err
	}
	r.limiter.Record()
	metrics.OracleCalls.WithLabelValues(toolOptimizeStrategy, "success").Inc()

	amountUSD := EstimateUSD(intent.FromToken.Token, intent.FromToken.Amount)
	rec := strategy.Recommend(amountUSD, intent.PrivacyLevel, intent.Urgency)

	splits, err := strategy.Split(intent.FromToken.Amount, rec.NumSplits)
	if err != nil {
		return models.ExecutionPlan{}, fmt.Errorf("failed to split order: %v", err)
	}

	return strategy.BuildLocalPlan(intent, rec, splits), nil
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whisperfi/whisperd/pkg/models"
	"github.com/whisperfi/whisperd/pkg/ratelimit"
)

func newRuleOracle() *RuleOracle {
	return NewRuleOracle(ratelimit.NewLimiter(100, 0))
}

func TestRuleParseIntentSwap(t *testing.T) {
	oracle := newRuleOracle()

	result, err := oracle.ParseIntent(context.Background(), "Swap 2 ETH to USDC on base asap", nil)
	require.NoError(t, err)

	assert.Equal(t, models.IntentSwap, result.Intent.Type)
	assert.Equal(t, "ETH", result.Intent.FromToken.Token)
	assert.Equal(t, "2", result.Intent.FromToken.Amount)
	assert.Equal(t, 8453, result.Intent.FromToken.ChainID)
	assert.Equal(t, "USDC", result.Intent.ToToken.Token)
	assert.Equal(t, 8453, result.Intent.ToToken.ChainID)
	assert.Equal(t, models.UrgencyHigh, result.Intent.Urgency)
	assert.Equal(t, models.PrivacyEnhanced, result.Intent.PrivacyLevel)
	assert.Equal(t, 0.005, result.Intent.SlippageTolerance)
	assert.Empty(t, result.Warnings)
}

func TestRuleParseIntentMaximumPrivacy(t *testing.T) {
	oracle := newRuleOracle()

	result, err := oracle.ParseIntent(context.Background(), "swap 5 eth for usdc with maximum privacy", nil)
	require.NoError(t, err)

	assert.Equal(t, models.PrivacyMaximum, result.Intent.PrivacyLevel)
	assert.Equal(t, models.UrgencyMedium, result.Intent.Urgency)
}

func TestRuleParseIntentBridge(t *testing.T) {
	oracle := newRuleOracle()

	result, err := oracle.ParseIntent(context.Background(), "bridge 100 usdc from base to arbitrum", nil)
	require.NoError(t, err)

	assert.Equal(t, models.IntentBridge, result.Intent.Type)
	assert.Equal(t, "100", result.Intent.FromToken.Amount)
	assert.Equal(t, "USDC", result.Intent.FromToken.Token)
	assert.Equal(t, 8453, result.Intent.FromToken.ChainID)
	assert.Equal(t, 42161, result.Intent.ToToken.ChainID)
	assert.True(t, result.Intent.IsCrossChain())
}

func TestRuleParseIntentDefaults(t *testing.T) {
	oracle := newRuleOracle()

	result, err := oracle.ParseIntent(context.Background(), "make me private please", nil)
	require.NoError(t, err)

	assert.Equal(t, models.IntentSwap, result.Intent.Type)
	assert.Equal(t, "1", result.Intent.FromToken.Amount)
	assert.Equal(t, "ETH", result.Intent.FromToken.Token)
	assert.Equal(t, "USDC", result.Intent.ToToken.Token)
	assert.Equal(t, 8453, result.Intent.FromToken.ChainID)
	assert.Len(t, result.Warnings, 2)
}

func TestRuleParseIntentUsesWalletChain(t *testing.T) {
	oracle := newRuleOracle()
	wallet := &models.WalletContext{Address: "0xabc", ChainID: 42161}

	result, err := oracle.ParseIntent(context.Background(), "swap 1 eth to usdc", wallet)
	require.NoError(t, err)

	assert.Equal(t, 42161, result.Intent.FromToken.ChainID)
	assert.Equal(t, 42161, result.Intent.ToToken.ChainID)
}

func TestRuleParseIntentRateLimited(t *testing.T) {
	oracle := NewRuleOracle(ratelimit.NewLimiter(1, 0))

	_, err := oracle.ParseIntent(context.Background(), "swap 1 eth to usdc", nil)
	require.NoError(t, err)

	_, err = oracle.ParseIntent(context.Background(), "swap 1 eth to usdc", nil)
	require.Error(t, err)

	var limited *ratelimit.ErrRateLimited
	require.True(t, errors.As(err, &limited))
	assert.Equal(t, 1, limited.Stats.CallCount)
	assert.Equal(t, 0, limited.Stats.Remaining)
}

func swapIntent(token, amount string, level models.PrivacyLevel) models.ParsedIntent {
	return models.ParsedIntent{
		Type:              models.IntentSwap,
		FromToken:         models.TokenAmount{Token: token, Amount: amount, ChainID: 8453},
		ToToken:           models.TokenAmount{Token: "USDC", Amount: "", ChainID: 8453},
		PrivacyLevel:      level,
		SlippageTolerance: 0.005,
		Urgency:           models.UrgencyMedium,
	}
}

func TestRuleAnalyzePrivacyLargeSwap(t *testing.T) {
	oracle := newRuleOracle()

	analysis, err := oracle.AnalyzePrivacy(context.Background(), swapIntent("ETH", "10", models.PrivacyEnhanced))
	require.NoError(t, err)

	// 30k USD: three high risks, one medium leakage risk, one low timing risk
	require.Len(t, analysis.Risks, 5)
	assert.Equal(t, 15, analysis.OverallScore)

	categories := map[models.RiskCategory]models.RiskSeverity{}
	for _, risk := range analysis.Risks {
		categories[risk.Category] = risk.Severity
	}
	assert.Equal(t, models.SeverityHigh, categories[models.RiskMEV])
	assert.Equal(t, models.SeverityHigh, categories[models.RiskSandwich])
	assert.Equal(t, models.SeverityMedium, categories[models.RiskInfoLeakage])
	assert.Equal(t, models.SeverityLow, categories[models.RiskTiming])
	assert.Equal(t, 40, analysis.ImprovementPercentage)
	assert.NotEmpty(t, analysis.Recommendations)
}

func TestRuleAnalyzePrivacySmallSwap(t *testing.T) {
	oracle := newRuleOracle()

	analysis, err := oracle.AnalyzePrivacy(context.Background(), swapIntent("USDC", "100", models.PrivacyEnhanced))
	require.NoError(t, err)

	require.Len(t, analysis.Risks, 4)
	assert.Equal(t, 70, analysis.OverallScore)
	for _, risk := range analysis.Risks {
		assert.NotEqual(t, models.RiskInfoLeakage, risk.Category)
	}
}

func TestRuleAnalyzePrivacyStandardSkipsTiming(t *testing.T) {
	oracle := newRuleOracle()

	analysis, err := oracle.AnalyzePrivacy(context.Background(), swapIntent("USDC", "100", models.PrivacyStandard))
	require.NoError(t, err)

	require.Len(t, analysis.Risks, 3)
	for _, risk := range analysis.Risks {
		assert.NotEqual(t, models.RiskTiming, risk.Category)
	}
}

func TestRuleOptimizeStrategySplit(t *testing.T) {
	oracle := newRuleOracle()
	intent := swapIntent("ETH", "2", models.PrivacyEnhanced)

	plan, err := oracle.OptimizeStrategy(context.Background(), intent, models.PrivacyAnalysis{})
	require.NoError(t, err)

	// 6k USD at enhanced privacy splits into 3 chunks; ETH is native on
	// Base so no approval, and chunks after the first wait first
	assert.Equal(t, models.StrategySplit, plan.Strategy)
	require.Len(t, plan.Steps, 5)
	assert.Equal(t, models.StepSwapUniswap, plan.Steps[0].Type)
	assert.Equal(t, models.StepWait, plan.Steps[1].Type)
	assert.Equal(t, models.StepSwapUniswap, plan.Steps[2].Type)
	assert.Equal(t, 55, plan.PrivacyScore)
}

func TestRuleOptimizeStrategyStandard(t *testing.T) {
	oracle := newRuleOracle()
	intent := swapIntent("USDC", "100", models.PrivacyStandard)

	plan, err := oracle.OptimizeStrategy(context.Background(), intent, models.PrivacyAnalysis{})
	require.NoError(t, err)

	assert.Equal(t, models.StrategyStandard, plan.Strategy)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, models.StepApprove, plan.Steps[0].Type)
	assert.Equal(t, models.StepSwapUniswap, plan.Steps[1].Type)
	assert.Equal(t, "100", plan.Steps[1].Amount)
}

func TestEstimateUSD(t *testing.T) {
	assert.Equal(t, 6000.0, EstimateUSD("ETH", "2"))
	assert.Equal(t, 100.0, EstimateUSD("usdc", "100"))
	assert.Equal(t, 50.0, EstimateUSD("UNKNOWN", "50"))
	assert.Equal(t, 0.0, EstimateUSD("ETH", "not-a-number"))
}

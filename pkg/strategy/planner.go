package strategy

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/whisperfi/whisperd/pkg/models"
	"github.com/whisperfi/whisperd/pkg/tokens"
)

// Coarse per-step estimates used when building plans locally
var (
	gasApproveUSD = decimal.RequireFromString("2.50")
	gasSwapUSD    = decimal.RequireFromString("5.00")
	gasBridgeUSD  = decimal.RequireFromString("8.00")
)

const (
	timeApproveSec = 15
	timeSwapSec    = 30
	timeBridgeSec  = 180
)

// BuildLocalPlan turns a recommendation and its split orders into a
// concrete execution plan without consulting an external oracle. Steps
// follow split order; chunks with a delay are preceded by a WAIT step.
func BuildLocalPlan(intent models.ParsedIntent, rec Recommendation, splits []SplitOrder) models.ExecutionPlan {
	crossChain := intent.IsCrossChain()
	fromChain := intent.FromToken.ChainID
	fromChainName := tokens.GetChainName(fromChain)
	toChainName := tokens.GetChainName(intent.ToToken.ChainID)

	steps := make([]models.ExecutionStep, 0, 2*len(splits)+1)
	totalGas := decimal.Zero
	totalTime := 0
	hasDelay := false

	addStep := func(step models.ExecutionStep, gasUSD decimal.Decimal) {
		step.ID = fmt.Sprintf("step-%d", len(steps))
		step.Status = models.StepPending
		step.EstimatedGas = "$" + gasUSD.StringFixed(2)
		steps = append(steps, step)
		totalGas = totalGas.Add(gasUSD)
		totalTime += step.EstimatedTime
	}

	// Native assets need no allowance; everything else gets one approval
	// up front covering all chunks
	fromToken, resolved := tokens.Resolve(intent.FromToken.Token, fromChain)
	if !resolved || !tokens.IsNative(fromToken.Address) {
		addStep(models.ExecutionStep{
			Type:          models.StepApprove,
			Description:   fmt.Sprintf("Approve %s for trading", intent.FromToken.Token),
			FromToken:     intent.FromToken.Token,
			ToToken:       intent.FromToken.Token,
			Amount:        intent.FromToken.Amount,
			ChainID:       fromChain,
			EstimatedTime: timeApproveSec,
		}, gasApproveUSD)
	}

	for _, chunk := range splits {
		if chunk.DelaySeconds > 0 {
			hasDelay = true
			addStep(models.ExecutionStep{
				Type:          models.StepWait,
				Description:   fmt.Sprintf("Wait %d seconds before the next chunk", chunk.DelaySeconds),
				Amount:        "0",
				ChainID:       fromChain,
				EstimatedTime: chunk.DelaySeconds,
				PrivacyNote:   "Randomized delay prevents timing correlation",
			}, decimal.Zero)
		}

		if crossChain {
			addStep(models.ExecutionStep{
				Type:          models.StepBridgeLiFi,
				Description:   fmt.Sprintf("Bridge %s %s from %s to %s", chunk.Amount, intent.FromToken.Token, fromChainName, toChainName),
				FromToken:     intent.FromToken.Token,
				ToToken:       intent.ToToken.Token,
				Amount:        chunk.Amount,
				ChainID:       fromChain,
				ToChainID:     intent.ToToken.ChainID,
				EstimatedTime: timeBridgeSec,
				PrivacyNote:   bridgeNote(rec.Strategy),
			}, gasBridgeUSD)
		} else {
			addStep(models.ExecutionStep{
				Type:          models.StepSwapUniswap,
				Description:   fmt.Sprintf("Swap %s %s for %s", chunk.Amount, intent.FromToken.Token, intent.ToToken.Token),
				FromToken:     intent.FromToken.Token,
				ToToken:       intent.ToToken.Token,
				Amount:        chunk.Amount,
				ChainID:       fromChain,
				EstimatedTime: timeSwapSec,
				PrivacyNote:   swapNote(len(splits)),
			}, gasSwapUSD)
		}
	}

	return models.ExecutionPlan{
		ID:                 "plan-" + uuid.NewString(),
		Strategy:           rec.Strategy,
		Steps:              steps,
		TotalEstimatedGas:  "$" + totalGas.StringFixed(2),
		TotalEstimatedTime: totalTime,
		PrivacyScore:       Score(rec.Strategy, rec.NumSplits, hasDelay, crossChain),
		Description:        rec.Reason,
	}
}

func bridgeNote(strategyType models.StrategyType) string {
	if strategyType == models.StrategyCrossChain {
		return "Routing through another chain breaks the on-chain trail"
	}
	return ""
}

func swapNote(numSplits int) string {
	if numSplits > 1 {
		return fmt.Sprintf("One of %d chunks hiding the true trade size", numSplits)
	}
	return ""
}

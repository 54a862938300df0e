package strategy

import "github.com/whisperfi/whisperd/pkg/models"

// Recommendation is the outcome of strategy selection
type Recommendation struct {
	Strategy  models.StrategyType `json:"strategy"`
	NumSplits int                 `json:"numSplits"`
	Reason    string              `json:"reason"`
}

// Recommend picks a privacy strategy from trade size and user preferences.
// Urgency trumps privacy: a high-urgency trade always executes directly.
func Recommend(amountUSD float64, privacyLevel models.PrivacyLevel, urgency models.Urgency) Recommendation {
	if privacyLevel == models.PrivacyStandard || urgency == models.UrgencyHigh {
		return Recommendation{
			Strategy:  models.StrategyStandard,
			NumSplits: 1,
			Reason:    "Direct execution for speed",
		}
	}

	if privacyLevel == models.PrivacyMaximum && urgency == models.UrgencyLow {
		if amountUSD > 10000 {
			return Recommendation{
				Strategy:  models.StrategyCrossChain,
				NumSplits: 5,
				Reason:    "Large trade with maximum privacy: split across chains with delays",
			}
		}
		return Recommendation{
			Strategy:  models.StrategyDelayed,
			NumSplits: 4,
			Reason:    "Maximum privacy with time-delayed split execution",
		}
	}

	if amountUSD > 5000 {
		return Recommendation{
			Strategy:  models.StrategySplit,
			NumSplits: 3,
			Reason:    "Split into 3 chunks to hide trade size",
		}
	}

	return Recommendation{
		Strategy:  models.StrategySplit,
		NumSplits: 2,
		Reason:    "Split into 2 chunks for moderate privacy",
	}
}

// Score rates a strategy's privacy protection on a 0-100 scale.
// Every strategy starts from a base score; splits, delays and
// cross-chain hops add to it.
func Score(strategyType models.StrategyType, numSplits int, hasDelay, crossChain bool) int {
	score := 20

	switch strategyType {
	case models.StrategyStandard:
	case models.StrategySplit:
		score += 25
		if numSplits >= 3 {
			score += 10
		}
		if numSplits >= 5 {
			score += 5
		}
	case models.StrategyDelayed:
		score += 35
		if hasDelay {
			score += 15
		}
	case models.StrategyCrossChain:
		score += 45
		if crossChain {
			score += 15
		}
	}

	if score > 100 {
		return 100
	}
	return score
}

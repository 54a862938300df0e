package strategy

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"
)

// SplitOrder is one chunk of a split trade
type SplitOrder struct {
	Amount       string `json:"amount"`
	DelaySeconds int    `json:"delaySeconds"`
	Index        int    `json:"index"`
}

// Split divides a trade into randomly sized chunks so on-chain observers
// cannot reconstruct the original size. Chunk amounts are rounded to 6
// decimals except the last, which takes the exact remainder so the chunks
// always sum back to the total. The first chunk executes immediately;
// later chunks carry a random delay to defeat timing analysis.
func Split(totalAmount string, numSplits int) ([]SplitOrder, error) {
	total, err := decimal.NewFromString(totalAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid total amount: %s", totalAmount)
	}
	if total.Sign() < 0 {
		return nil, fmt.Errorf("total amount must not be negative: %s", totalAmount)
	}
	if numSplits < 1 {
		return nil, fmt.Errorf("split count must be at least 1, got %d", numSplits)
	}

	if numSplits == 1 {
		return []SplitOrder{{Amount: total.StringFixed(6), DelaySeconds: 0, Index: 0}}, nil
	}

	weights := make([]float64, numSplits)
	weightSum := 0.0
	for i := range weights {
		weights[i] = rand.Float64() + 0.3
		weightSum += weights[i]
	}

	splits := make([]SplitOrder, 0, numSplits)
	remaining := total
	for i := 0; i < numSplits; i++ {
		var amount decimal.Decimal
		if i == numSplits-1 {
			amount = remaining
		} else {
			fraction := decimal.NewFromFloat(weights[i] / weightSum)
			amount = total.Mul(fraction).Round(6)
		}
		remaining = remaining.Sub(amount)

		delay := 0
		if i > 0 {
			delay = randomDelay(30, 120)
		}

		splits = append(splits, SplitOrder{
			Amount:       amount.StringFixed(6),
			DelaySeconds: delay,
			Index:        i,
		})
	}

	return splits, nil
}

// randomDelay returns a uniform random delay in [minSeconds, maxSeconds]
func randomDelay(minSeconds, maxSeconds int) int {
	return rand.Intn(maxSeconds-minSeconds+1) + minSeconds
}

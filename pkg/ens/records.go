package ens

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/whisperfi/whisperd/pkg/models"
)

// Strategy records live in ENS text records, turning any ENS name into a
// small strategy marketplace. Keys follow the pattern
// com.whisperfi.strategy.<strategy-name>.
const StrategyKeyPrefix = "com.whisperfi.strategy"

// KnownStrategyNames is the closed set of record names the lookup checks
var KnownStrategyNames = []string{
	"conservative-swap",
	"aggressive-swap",
	"privacy-max",
	"yield-optimizer",
	"rebalance-weekly",
}

var invalidKeyChars = regexp.MustCompile(`[^a-z0-9-]`)

// StrategyKey builds the text record key for a strategy name. Names are
// lowercased and anything outside [a-z0-9-] becomes a dash.
func StrategyKey(strategyName string) string {
	sanitized := invalidKeyChars.ReplaceAllString(strings.ToLower(strategyName), "-")
	return StrategyKeyPrefix + "." + sanitized
}

// SerializeStrategy encodes a strategy config for storage in a text record
func SerializeStrategy(config models.StrategyConfig) (string, error) {
	data, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to serialize strategy: %v", err)
	}
	return string(data), nil
}

// ParseStrategy decodes a text record value into a strategy config
func ParseStrategy(value string) (models.StrategyConfig, error) {
	var config models.StrategyConfig
	if err := json.Unmarshal([]byte(value), &config); err != nil {
		return models.StrategyConfig{}, fmt.Errorf("failed to parse strategy record: %v", err)
	}
	return config, nil
}

// DefaultStrategy creates a publishable strategy config with sane defaults
func DefaultStrategy(name, author string) models.StrategyConfig {
	return models.StrategyConfig{
		Name:              name,
		Description:       fmt.Sprintf("%s strategy by %s", name, author),
		IntentType:        string(models.IntentSwap),
		PrivacyLevel:      string(models.PrivacyEnhanced),
		SplitCount:        3,
		DelayRange:        [2]int{30, 120},
		PreferredChains:   []int{8453},
		SlippageTolerance: 0.005,
		CreatedAt:         time.Now().UnixMilli(),
		Author:            author,
	}
}

// LookupStrategies fetches every well-known strategy record published
// under an ENS name. Missing records and records that fail to parse are
// skipped; only a total resolver outage surfaces as an error.
func LookupStrategies(ctx context.Context, resolver TextResolver, ensName string) models.StrategyLookupResult {
	result := models.StrategyLookupResult{
		Name:       ensName,
		Strategies: []models.StrategyConfig{},
	}

	for _, name := range KnownStrategyNames {
		value, err := resolver.Text(ctx, ensName, StrategyKeyPrefix+"."+name)
		if err != nil || value == "" {
			continue
		}
		config, err := ParseStrategy(value)
		if err != nil {
			continue
		}
		result.Strategies = append(result.Strategies, config)
	}

	return result
}

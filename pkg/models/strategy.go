package models

// StrategyConfig is a shareable strategy template as published to an
// ENS-style record store. Values are opaque JSON on the wire.
type StrategyConfig struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	IntentType        string  `json:"intentType"`
	PrivacyLevel      string  `json:"privacyLevel"`
	SplitCount        int     `json:"splitCount,omitempty"`
	DelayRange        [2]int  `json:"delayRange,omitempty"`
	PreferredChains   []int   `json:"preferredChains,omitempty"`
	SlippageTolerance float64 `json:"slippageTolerance"`
	CreatedAt         int64   `json:"createdAt"`
	Author            string  `json:"author"`
}

// StrategyLookupResult is the outcome of enumerating the well-known
// strategy records published under a name
type StrategyLookupResult struct {
	Name       string           `json:"ensName"`
	Strategies []StrategyConfig `json:"strategies"`
	Error      string           `json:"error,omitempty"`
}

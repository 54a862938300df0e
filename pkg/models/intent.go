package models

// IntentType is the kind of DeFi operation the user asked for
type IntentType string

const (
	IntentSwap             IntentType = "SWAP"
	IntentBridge           IntentType = "BRIDGE"
	IntentProvideLiquidity IntentType = "PROVIDE_LIQUIDITY"
	IntentRebalance        IntentType = "REBALANCE"
	IntentYieldFarm        IntentType = "YIELD_FARM"
)

// PrivacyLevel is the privacy tier the user requested
type PrivacyLevel string

const (
	PrivacyStandard PrivacyLevel = "standard"
	PrivacyEnhanced PrivacyLevel = "enhanced"
	PrivacyMaximum  PrivacyLevel = "maximum"
)

// Urgency is how quickly the user wants the operation executed
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// TokenAmount is a token/amount/chain triple
type TokenAmount struct {
	Token   string `json:"token"`
	Amount  string `json:"amount"`
	ChainID int    `json:"chainId"`
}

// ParsedIntent is the structured form of a natural-language request.
// It is immutable once parsed; the session that parsed it owns it.
type ParsedIntent struct {
	Type                  IntentType   `json:"type"`
	FromToken             TokenAmount  `json:"fromToken"`
	ToToken               TokenAmount  `json:"toToken"`
	PrivacyLevel          PrivacyLevel `json:"privacyLevel"`
	SlippageTolerance     float64      `json:"slippageTolerance"`
	Urgency               Urgency      `json:"urgency"`
	AdditionalConstraints []string     `json:"additionalConstraints"`
}

// IntentParseResult wraps a parsed intent with parser metadata
type IntentParseResult struct {
	Intent      ParsedIntent `json:"intent"`
	Confidence  float64      `json:"confidence"`
	Explanation string       `json:"explanation"`
	Warnings    []string     `json:"warnings"`
}

// WalletContext carries the connected wallet state sent with a request
type WalletContext struct {
	Address  string            `json:"address"`
	ENSName  string            `json:"ensName,omitempty"`
	ChainID  int               `json:"chainId"`
	Balances map[string]string `json:"balances"`
}

// IsCrossChain reports whether the intent moves funds between chains
func (i *ParsedIntent) IsCrossChain() bool {
	return i.FromToken.ChainID != i.ToToken.ChainID
}

package models

// QuoteRequest asks the cross-chain quote provider for a route.
// FromAmount is in the token's smallest unit.
type QuoteRequest struct {
	FromChainID int    `json:"fromChainId"`
	ToChainID   int    `json:"toChainId"`
	FromToken   string `json:"fromToken"` // token contract address
	ToToken     string `json:"toToken"`   // token contract address
	FromAmount  string `json:"fromAmount"`
	FromAddress string `json:"fromAddress"`
}

// TransactionRequest is an executable transaction attached to a quote
type TransactionRequest struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	ChainID  int    `json:"chainId"`
	GasLimit string `json:"gasLimit"`
}

// Quote is the provider's answer: amounts, estimates and route label,
// plus an optional executable transaction. A quote without a transaction
// request is informational only.
type Quote struct {
	ID                 string              `json:"id"`
	FromChainID        int                 `json:"fromChainId"`
	ToChainID          int                 `json:"toChainId"`
	FromToken          string              `json:"fromToken"`
	ToToken            string              `json:"toToken"`
	FromAmount         string              `json:"fromAmount"`
	ToAmount           string              `json:"toAmount"`
	EstimatedGas       string              `json:"estimatedGas"`  // USD
	EstimatedTime      int                 `json:"estimatedTime"` // seconds
	Route              string              `json:"route"`
	TransactionRequest *TransactionRequest `json:"transactionRequest,omitempty"`
}

// ObfuscatedQuote is a two-leg route through an intermediate chain.
// Leg2's input amount chains from Leg1's output amount.
type ObfuscatedQuote struct {
	Leg1 Quote `json:"leg1"`
	Leg2 Quote `json:"leg2"`
}

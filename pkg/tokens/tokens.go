package tokens

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ZeroAddress is the placeholder address used for chain-native assets
var ZeroAddress = common.HexToAddress("0x0000000000000000000000000000000000000000")

// Token describes one known token deployment on a chain
type Token struct {
	Address  common.Address
	Decimals int
	Symbol   string
}

// ChainList contains the list of supported chain IDs
var ChainList = []int{
	1,     // Ethereum
	10,    // Optimism
	8453,  // Base
	42161, // Arbitrum
}

// chainNames maps chain IDs to their names
var chainNames = map[int]string{
	1:     "ETHEREUM",
	10:    "OPTIMISM",
	8453:  "BASE",
	42161: "ARBITRUM",
}

// commonTokens maps chain ID to the well-known tokens on that chain
var commonTokens = map[int]map[string]Token{
	8453: {
		"ETH":   {Address: ZeroAddress, Decimals: 18, Symbol: "ETH"},
		"WETH":  {Address: common.HexToAddress("0x4200000000000000000000000000000000000006"), Decimals: 18, Symbol: "WETH"},
		"USDC":  {Address: common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"), Decimals: 6, Symbol: "USDC"},
		"USDBC": {Address: common.HexToAddress("0xd9aAEc86B65D86f6A7B5B1b0c42FFA531710b6CA"), Decimals: 6, Symbol: "USDbC"},
		"DAI":   {Address: common.HexToAddress("0x50c5725949A6F0c72E6C4a641F24049A917DB0Cb"), Decimals: 18, Symbol: "DAI"},
	},
	42161: {
		"ETH":    {Address: ZeroAddress, Decimals: 18, Symbol: "ETH"},
		"WETH":   {Address: common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"), Decimals: 18, Symbol: "WETH"},
		"USDC":   {Address: common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"), Decimals: 6, Symbol: "USDC"},
		"USDC.E": {Address: common.HexToAddress("0xFF970A61A04b1cA14834A43f5dE4533eBDDB5CC8"), Decimals: 6, Symbol: "USDC.e"},
		"ARB":    {Address: common.HexToAddress("0x912CE59144191C1204E64559FE8253a0e49E6548"), Decimals: 18, Symbol: "ARB"},
	},
	1: {
		"ETH":  {Address: ZeroAddress, Decimals: 18, Symbol: "ETH"},
		"WETH": {Address: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), Decimals: 18, Symbol: "WETH"},
		"USDC": {Address: common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), Decimals: 6, Symbol: "USDC"},
		"USDT": {Address: common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"), Decimals: 6, Symbol: "USDT"},
		"DAI":  {Address: common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"), Decimals: 18, Symbol: "DAI"},
	},
	10: {
		"ETH":  {Address: ZeroAddress, Decimals: 18, Symbol: "ETH"},
		"WETH": {Address: common.HexToAddress("0x4200000000000000000000000000000000000006"), Decimals: 18, Symbol: "WETH"},
		"USDC": {Address: common.HexToAddress("0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85"), Decimals: 6, Symbol: "USDC"},
	},
}

// GetChainName returns the name of the chain for a given chain ID
func GetChainName(chainID int) string {
	name, exists := chainNames[chainID]
	if !exists {
		return ""
	}
	return name
}

// Resolve looks up a token by symbol on a chain. Symbols are matched
// case-insensitively.
func Resolve(symbol string, chainID int) (Token, bool) {
	chain, exists := commonTokens[chainID]
	if !exists {
		return Token{}, false
	}
	token, exists := chain[strings.ToUpper(symbol)]
	if !exists {
		return Token{}, false
	}
	return token, true
}

// ResolveAddress resolves a token symbol to its contract address on a
// chain. The native asset resolves to the zero address.
func ResolveAddress(symbol string, chainID int) (common.Address, bool) {
	token, ok := Resolve(symbol, chainID)
	if !ok {
		return common.Address{}, false
	}
	return token.Address, true
}

// ResolveDecimals returns the decimal count for a token symbol on a
// chain, defaulting to 18 when the token is unknown
func ResolveDecimals(symbol string, chainID int) int {
	token, ok := Resolve(symbol, chainID)
	if !ok {
		return 18
	}
	return token.Decimals
}

// IsNative reports whether the address is the chain-native asset placeholder
func IsNative(address common.Address) bool {
	return address == ZeroAddress
}

// ToBaseUnits converts a human-readable decimal amount to the token's
// smallest unit given its decimal count
func ToBaseUnits(amount string, decimals int) (*big.Int, error) {
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %s", amount)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("amount must not be negative: %s", amount)
	}

	scaled := value.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		// More precision than the token can represent; truncate
		scaled = scaled.Truncate(0)
	}
	return scaled.BigInt(), nil
}

package uniswap

import "github.com/ethereum/go-ethereum/common"

// Addresses holds the Uniswap v4 deployment for one chain.
// Reference: https://docs.uniswap.org/contracts/v4/deployments
type Addresses struct {
	PoolManager     common.Address
	UniversalRouter common.Address
	Permit2         common.Address
	PositionManager common.Address
	Quoter          common.Address
}

// deployments maps chain IDs to their v4 contract addresses
var deployments = map[int]Addresses{
	// Base
	8453: {
		PoolManager:     common.HexToAddress("0x498581fF718922c3f8e6A244956aF099B2652b2b"),
		UniversalRouter: common.HexToAddress("0x6fF5693b99212Da76ad316178A184AB56D299b43"),
		Permit2:         common.HexToAddress("0x000000000022D473030F116dDEE9F6B43aC78BA3"),
		PositionManager: common.HexToAddress("0x7C5f5A4bBd8fD63184577525326123B519429bDc"),
		Quoter:          common.HexToAddress("0x0d5e0F971ED27C7d00ac8c4DC17a63c1620a7735"),
	},
	// Arbitrum
	42161: {
		PoolManager:     common.HexToAddress("0x360E68faCcca8cA495c1B759Fd9EEe466db9FB32"),
		UniversalRouter: common.HexToAddress("0xa51afAF359d044F8e56fE74B9575f23142cD4B76"),
		Permit2:         common.HexToAddress("0x000000000022D473030F116dDEE9F6B43aC78BA3"),
		PositionManager: common.HexToAddress("0xd88F38F930b7952f2DB2432Cb002E7abbF3dD869"),
		Quoter:          common.HexToAddress("0x3972c00F7ed4885e145823f4b627AEBFF4790B53"),
	},
	// Ethereum mainnet
	1: {
		PoolManager:     common.HexToAddress("0x000000000004444c5dc75cB358380D2e3dE08A90"),
		UniversalRouter: common.HexToAddress("0x66a9893cC07D91D95644AEDD05D03f95e1dBA8Af"),
		Permit2:         common.HexToAddress("0x000000000022D473030F116dDEE9F6B43aC78BA3"),
		PositionManager: common.HexToAddress("0xbD216513d74C8cf14cf4747E6AaA6420FF64ee9e"),
		Quoter:          common.HexToAddress("0x52f0E24D1c21C8A0cB1e5a5dD6198556BD9E1203"),
	},
}

// Universal Router outer command for a v4 swap
const CommandV4Swap = 0x10

// Inner v4 action types used inside the V4_SWAP input
const (
	ActionSwapExactInSingle = 0x06
	ActionSettleAll         = 0x0c
	ActionTakeAll           = 0x0f
)

// Fee tiers available on Uniswap v4, in hundredths of a bip
const (
	FeeLowest = 100   // 0.01%
	FeeLow    = 500   // 0.05%
	FeeMedium = 3000  // 0.30%
	FeeHigh   = 10000 // 1.00%
)

// tickSpacings maps fee tiers to their tick spacing
var tickSpacings = map[int]int{
	100:   1,
	500:   10,
	3000:  60,
	10000: 200,
}

// ForChain returns the v4 deployment addresses for a chain ID
func ForChain(chainID int) (Addresses, bool) {
	addrs, exists := deployments[chainID]
	return addrs, exists
}

// TickSpacing returns the tick spacing for a fee tier, defaulting to the
// medium tier's spacing for unknown fees
func TickSpacing(fee int) int {
	spacing, exists := tickSpacings[fee]
	if !exists {
		return 60
	}
	return spacing
}

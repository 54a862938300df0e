package uniswap

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// erc20ABI contains the approve function used for router allowances
const erc20ABI = `[{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"payable":false,"stateMutability":"nonpayable","type":"function"}]`

// universalRouterABI contains the execute entrypoint of the Universal Router
const universalRouterABI = `[{"inputs":[{"name":"commands","type":"bytes"},{"name":"inputs","type":"bytes[]"},{"name":"deadline","type":"uint256"}],"name":"execute","outputs":[],"stateMutability":"payable","type":"function"}]`

var (
	addressType, _  = abi.NewType("address", "", nil)
	uint256Type, _  = abi.NewType("uint256", "", nil)
	bytesType, _    = abi.NewType("bytes", "", nil)
	bytesArrType, _ = abi.NewType("bytes[]", "", nil)

	exactInSingleType, _ = abi.NewType("tuple", "", []abi.ArgumentMarshaling{
		{Name: "poolKey", Type: "tuple", Components: []abi.ArgumentMarshaling{
			{Name: "currency0", Type: "address"},
			{Name: "currency1", Type: "address"},
			{Name: "fee", Type: "uint24"},
			{Name: "tickSpacing", Type: "int24"},
			{Name: "hooks", Type: "address"},
		}},
		{Name: "zeroForOne", Type: "bool"},
		{Name: "amountIn", Type: "uint128"},
		{Name: "amountOutMinimum", Type: "uint128"},
		{Name: "hookData", Type: "bytes"},
	})
)

type poolKey struct {
	Currency0   common.Address
	Currency1   common.Address
	Fee         *big.Int
	TickSpacing *big.Int
	Hooks       common.Address
}

type exactInputSingleParams struct {
	PoolKey          poolKey
	ZeroForOne       bool
	AmountIn         *big.Int
	AmountOutMinimum *big.Int
	HookData         []byte
}

// Transaction is a fully encoded transaction ready for signing
type Transaction struct {
	To      common.Address
	Data    []byte
	Value   *big.Int
	ChainID int
}

// SwapParams describe a single-pool exact-input swap on Uniswap v4.
// Native assets are represented by the zero address.
type SwapParams struct {
	ChainID          int
	TokenIn          common.Address
	TokenOut         common.Address
	AmountIn         *big.Int
	AmountOutMinimum *big.Int
	Fee              int
	Deadline         *big.Int
}

// BuildApprove encodes an ERC20 approval granting the spender an
// unlimited allowance on the token
func BuildApprove(token, spender common.Address, chainID int) (Transaction, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to parse ERC20 ABI: %v", err)
	}

	data, err := parsed.Pack("approve", spender, abi.MaxUint256)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to pack approve call: %v", err)
	}

	return Transaction{
		To:      token,
		Data:    data,
		Value:   big.NewInt(0),
		ChainID: chainID,
	}, nil
}

// BuildSwap encodes a Universal Router execute call performing a v4
// exact-input single-pool swap. The input token's full amount is settled
// and at least AmountOutMinimum of the output token is taken.
func BuildSwap(params SwapParams) (Transaction, error) {
	addrs, exists := ForChain(params.ChainID)
	if !exists {
		return Transaction{}, fmt.Errorf("no Uniswap v4 deployment on chain %d", params.ChainID)
	}
	if params.AmountIn == nil || params.AmountIn.Sign() <= 0 {
		return Transaction{}, fmt.Errorf("swap amount must be positive")
	}

	fee := params.Fee
	if fee == 0 {
		fee = FeeMedium
	}
	deadline := params.Deadline
	if deadline == nil {
		deadline = big.NewInt(time.Now().Unix() + 1800)
	}
	minOut := params.AmountOutMinimum
	if minOut == nil {
		minOut = big.NewInt(0)
	}

	// Pool currencies are ordered by address
	currency0, currency1 := params.TokenIn, params.TokenOut
	zeroForOne := true
	if bytes.Compare(currency0.Bytes(), currency1.Bytes()) > 0 {
		currency0, currency1 = currency1, currency0
		zeroForOne = false
	}

	swapArgs := abi.Arguments{{Type: exactInSingleType}}
	swapInput, err := swapArgs.Pack(exactInputSingleParams{
		PoolKey: poolKey{
			Currency0:   currency0,
			Currency1:   currency1,
			Fee:         big.NewInt(int64(fee)),
			TickSpacing: big.NewInt(int64(TickSpacing(fee))),
			Hooks:       common.Address{},
		},
		ZeroForOne:       zeroForOne,
		AmountIn:         params.AmountIn,
		AmountOutMinimum: minOut,
		HookData:         []byte{},
	})
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to encode swap params: %v", err)
	}

	currencyAmountArgs := abi.Arguments{{Type: addressType}, {Type: uint256Type}}
	settleInput, err := currencyAmountArgs.Pack(params.TokenIn, params.AmountIn)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to encode settle params: %v", err)
	}
	takeInput, err := currencyAmountArgs.Pack(params.TokenOut, minOut)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to encode take params: %v", err)
	}

	actions := []byte{ActionSwapExactInSingle, ActionSettleAll, ActionTakeAll}
	routerArgs := abi.Arguments{{Type: bytesType}, {Type: bytesArrType}}
	routerInput, err := routerArgs.Pack(actions, [][]byte{swapInput, settleInput, takeInput})
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to encode router input: %v", err)
	}

	parsed, err := abi.JSON(strings.NewReader(universalRouterABI))
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to parse router ABI: %v", err)
	}
	data, err := parsed.Pack("execute", []byte{CommandV4Swap}, [][]byte{routerInput}, deadline)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to pack execute call: %v", err)
	}

	value := big.NewInt(0)
	if params.TokenIn == (common.Address{}) {
		value = new(big.Int).Set(params.AmountIn)
	}

	return Transaction{
		To:      addrs.UniversalRouter,
		Data:    data,
		Value:   value,
		ChainID: params.ChainID,
	}, nil
}

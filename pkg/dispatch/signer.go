package dispatch

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrSigningUnsupported is returned by signers that can send transactions
// but cannot produce raw signed bytes for private relay submission
var ErrSigningUnsupported = errors.New("signer cannot produce raw transactions")

// TxRequest is a chain-agnostic transaction to be signed and sent
type TxRequest struct {
	ChainID  int
	To       common.Address
	Data     []byte
	Value    *big.Int
	GasLimit uint64
}

// Signer abstracts the wallet boundary. Implementations own key material;
// callers never see it.
type Signer interface {
	// Address returns the signing account
	Address() common.Address

	// SwitchChain prepares the signer for the given chain
	SwitchChain(ctx context.Context, chainID int) error

	// SendTransaction signs and broadcasts through the signer's own
	// connection, returning the transaction hash
	SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error)

	// SignTransaction returns the raw signed transaction bytes without
	// broadcasting. Returns ErrSigningUnsupported when the signer cannot.
	SignTransaction(ctx context.Context, req TxRequest) ([]byte, error)
}

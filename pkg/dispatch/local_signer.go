package dispatch

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/whisperfi/whisperd/pkg/logger"
	"github.com/whisperfi/whisperd/pkg/metrics"
)

const defaultGasLimit = 500000

// LocalSigner signs with an in-process private key and broadcasts through
// per-chain RPC connections. Connections are dialed lazily and cached.
type LocalSigner struct {
	key           *ecdsa.PrivateKey
	address       common.Address
	rpcURLs       map[int]string
	gasMultiplier float64
	nonces        *NonceCache
	logger        logger.Logger

	clients map[int]*ethclient.Client
	mu      sync.Mutex
}

var _ Signer = (*LocalSigner)(nil)

// NewLocalSigner parses the private key and prepares a signer for the
// configured chains
func NewLocalSigner(privateKeyHex string, rpcURLs map[int]string, gasMultiplier float64, log logger.Logger) (*LocalSigner, error) {
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %v", err)
	}
	if gasMultiplier <= 0 {
		gasMultiplier = 1.1
	}
	if log == nil {
		log = &logger.EmptyLogger{}
	}

	return &LocalSigner{
		key:           key,
		address:       crypto.PubkeyToAddress(key.PublicKey),
		rpcURLs:       rpcURLs,
		gasMultiplier: gasMultiplier,
		nonces:        NewNonceCache(),
		logger:        log,
		clients:       make(map[int]*ethclient.Client),
	}, nil
}

// Address returns the signing account
func (s *LocalSigner) Address() common.Address {
	return s.address
}

// SwitchChain verifies the signer can reach the chain, dialing its RPC
// endpoint if necessary
func (s *LocalSigner) SwitchChain(ctx context.Context, chainID int) error {
	_, err := s.client(chainID)
	return err
}

// client returns the cached connection for a chain, dialing on first use
func (s *LocalSigner) client(chainID int) (*ethclient.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if client, exists := s.clients[chainID]; exists {
		return client, nil
	}

	rpcURL, exists := s.rpcURLs[chainID]
	if !exists {
		return nil, fmt.Errorf("no RPC endpoint configured for chain %d", chainID)
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain %d: %v", chainID, err)
	}
	s.clients[chainID] = client
	return client, nil
}

// buildTx assembles and signs a transaction for the request, returning it
// with its allocated nonce
func (s *LocalSigner) buildTx(ctx context.Context, req TxRequest) (*types.Transaction, uint64, error) {
	client, err := s.client(req.ChainID)
	if err != nil {
		return nil, 0, err
	}

	nonce, err := s.nonces.Next(ctx, req.ChainID, client, s.address)
	if err != nil {
		return nil, 0, err
	}

	gasPrice, err := s.suggestGasPrice(ctx, req.ChainID, client)
	if err != nil {
		s.nonces.Release(req.ChainID, nonce)
		return nil, 0, err
	}

	value := req.Value
	if value == nil {
		value = big.NewInt(0)
	}

	gasLimit := req.GasLimit
	if gasLimit == 0 {
		estimated, err := client.EstimateGas(ctx, ethereum.CallMsg{
			From:  s.address,
			To:    &req.To,
			Value: value,
			Data:  req.Data,
		})
		if err != nil {
			s.logger.DebugWithChain(req.ChainID, "Gas estimation failed, using default limit: %v", err)
			estimated = defaultGasLimit
		}
		gasLimit = estimated
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &req.To,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     req.Data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(int64(req.ChainID))), s.key)
	if err != nil {
		s.nonces.Release(req.ChainID, nonce)
		return nil, 0, fmt.Errorf("failed to sign transaction: %v", err)
	}

	return signed, nonce, nil
}

// suggestGasPrice fetches the network gas price and applies the buffer
// multiplier
func (s *LocalSigner) suggestGasPrice(ctx context.Context, chainID int, client *ethclient.Client) (*big.Int, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	gasPrice, err := client.SuggestGasPrice(timeoutCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %v", err)
	}

	buffered := new(big.Float).Mul(
		new(big.Float).SetInt(gasPrice),
		big.NewFloat(s.gasMultiplier),
	)
	final := new(big.Int)
	buffered.Int(final)

	gwei := new(big.Float).Quo(new(big.Float).SetInt(final), big.NewFloat(1e9))
	gweiValue, _ := gwei.Float64()
	metrics.GasPrice.WithLabelValues(strconv.Itoa(chainID)).Set(gweiValue)

	return final, nil
}

// SendTransaction signs and broadcasts, returning the transaction hash
func (s *LocalSigner) SendTransaction(ctx context.Context, req TxRequest) (common.Hash, error) {
	client, err := s.client(req.ChainID)
	if err != nil {
		return common.Hash{}, err
	}

	signed, nonce, err := s.buildTx(ctx, req)
	if err != nil {
		return common.Hash{}, err
	}

	if err := client.SendTransaction(ctx, signed); err != nil {
		s.nonces.Release(req.ChainID, nonce)
		return common.Hash{}, fmt.Errorf("failed to send transaction: %v", err)
	}

	metrics.TransactionsSent.WithLabelValues(strconv.Itoa(req.ChainID)).Inc()
	s.logger.InfoWithChain(req.ChainID, "Sent transaction %s (nonce %d)", signed.Hash().Hex(), nonce)
	return signed.Hash(), nil
}

// SignTransaction returns raw signed bytes without broadcasting, for
// private relay submission. The allocated nonce is handed back and the
// cache invalidated: whether the bytes land is up to the submitter, so
// the next allocation re-reads the network's pending view.
func (s *LocalSigner) SignTransaction(ctx context.Context, req TxRequest) ([]byte, error) {
	signed, nonce, err := s.buildTx(ctx, req)
	if err != nil {
		return nil, err
	}
	s.nonces.Release(req.ChainID, nonce)
	s.nonces.Invalidate(req.ChainID)
	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %v", err)
	}
	return raw, nil
}

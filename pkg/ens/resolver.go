package ens

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/whisperfi/whisperd/pkg/logger"
)

// ENS deployments on mainnet
var (
	RegistryAddress       = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")
	PublicResolverAddress = common.HexToAddress("0x231b0Ee14048e9dCcD1d247744d114a4EB5E8E63")
)

const registryABI = `[{"inputs":[{"name":"node","type":"bytes32"}],"name":"resolver","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}]`

const resolverABI = `[{"inputs":[{"name":"node","type":"bytes32"},{"name":"key","type":"string"}],"name":"text","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},{"inputs":[{"name":"node","type":"bytes32"},{"name":"key","type":"string"},{"name":"value","type":"string"}],"name":"setText","outputs":[],"stateMutability":"nonpayable","type":"function"}]`

// TextResolver reads ENS text records
type TextResolver interface {
	Text(ctx context.Context, name, key string) (string, error)
}

// Normalize lowercases and trims an ENS name. Full UTS-46 normalization
// is out of scope; strategy keys are already charset-sanitized.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Namehash computes the ENS node for a name per EIP-137
func Namehash(name string) common.Hash {
	node := common.Hash{}
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = crypto.Keccak256Hash(node.Bytes(), labelHash)
	}
	return node
}

// ChainResolver reads text records from the ENS registry on mainnet
type ChainResolver struct {
	client   *ethclient.Client
	registry common.Address
	logger   logger.Logger
}

// NewChainResolver connects to a mainnet RPC endpoint
func NewChainResolver(rpcURL string, log logger.Logger) (*ChainResolver, error) {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mainnet RPC: %v", err)
	}
	return &ChainResolver{
		client:   client,
		registry: RegistryAddress,
		logger:   log,
	}, nil
}

var _ TextResolver = (*ChainResolver)(nil)

// Text resolves a text record: registry lookup for the name's resolver,
// then text(node, key) on it
func (r *ChainResolver) Text(ctx context.Context, name, key string) (string, error) {
	node := Namehash(Normalize(name))

	parsedRegistry, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		return "", fmt.Errorf("failed to parse registry ABI: %v", err)
	}
	registry := bind.NewBoundContract(r.registry, parsedRegistry, r.client, r.client, r.client)

	var resolverOut []interface{}
	if err := registry.Call(&bind.CallOpts{Context: ctx}, &resolverOut, "resolver", node); err != nil {
		return "", fmt.Errorf("failed to look up resolver for %s: %v", name, err)
	}
	resolverAddr, ok := resolverOut[0].(common.Address)
	if !ok || resolverAddr == (common.Address{}) {
		return "", fmt.Errorf("no resolver set for %s", name)
	}

	parsedResolver, err := abi.JSON(strings.NewReader(resolverABI))
	if err != nil {
		return "", fmt.Errorf("failed to parse resolver ABI: %v", err)
	}
	resolver := bind.NewBoundContract(resolverAddr, parsedResolver, r.client, r.client, r.client)

	var textOut []interface{}
	if err := resolver.Call(&bind.CallOpts{Context: ctx}, &textOut, "text", node, key); err != nil {
		return "", fmt.Errorf("failed to read text record %s on %s: %v", key, name, err)
	}
	value, ok := textOut[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected text record type for %s", key)
	}

	r.logger.DebugWithChain(1, "Resolved %s on %s (%d bytes)", key, name, len(value))
	return value, nil
}

// Transaction is an encoded transaction for wallet signing
type Transaction struct {
	To      common.Address
	Data    []byte
	Value   *big.Int
	ChainID int
}

// BuildSetText encodes a Public Resolver setText call publishing a text
// record under an ENS name. Records live on mainnet only.
func BuildSetText(ensName, key, value string) (Transaction, error) {
	node := Namehash(Normalize(ensName))

	parsed, err := abi.JSON(strings.NewReader(resolverABI))
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to parse resolver ABI: %v", err)
	}
	data, err := parsed.Pack("setText", node, key, value)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to pack setText call: %v", err)
	}

	return Transaction{
		To:      PublicResolverAddress,
		Data:    data,
		Value:   big.NewInt(0),
		ChainID: 1,
	}, nil
}

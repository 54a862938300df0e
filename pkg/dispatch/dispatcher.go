package dispatch

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/whisperfi/whisperd/pkg/logger"
	"github.com/whisperfi/whisperd/pkg/metrics"
)

// DefaultRelayURL is the Flashbots Protect RPC endpoint
const DefaultRelayURL = "https://rpc.flashbots.net"

// DefaultRelayChainID restricts the relay path to Ethereum mainnet
const DefaultRelayChainID = 1

// RelayConfig controls the optional private relay path
type RelayConfig struct {
	Enabled bool
	URL     string
	ChainID int
}

// Dispatcher routes transactions to the network. With the relay enabled,
// transactions on the relay's chain are signed locally and submitted to
// the private relay so they skip the public mempool; everything else (and
// any relay failure) goes through the signer's standard path.
type Dispatcher struct {
	signer Signer
	relay  RelayConfig
	logger logger.Logger
}

// NewDispatcher creates a dispatcher around a signer
func NewDispatcher(signer Signer, relay RelayConfig, log logger.Logger) *Dispatcher {
	if relay.URL == "" {
		relay.URL = DefaultRelayURL
	}
	if relay.ChainID == 0 {
		relay.ChainID = DefaultRelayChainID
	}
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Dispatcher{
		signer: signer,
		relay:  relay,
		logger: log,
	}
}

// Signer exposes the wrapped signer
func (d *Dispatcher) Signer() Signer {
	return d.signer
}

// Dispatch sends a transaction, preferring the private relay when
// eligible. Relay failures fall back to the standard path transparently.
func (d *Dispatcher) Dispatch(ctx context.Context, req TxRequest) (common.Hash, error) {
	if d.relay.Enabled && req.ChainID == d.relay.ChainID {
		hash, err := d.sendPrivate(ctx, req)
		if err == nil {
			metrics.RelaySubmissions.WithLabelValues("success").Inc()
			d.logger.InfoWithChain(req.ChainID, "Sent transaction %s via private relay", hash.Hex())
			return hash, nil
		}
		metrics.RelaySubmissions.WithLabelValues("fallback").Inc()
		d.logger.ErrorWithChain(req.ChainID, "Private relay submission failed, falling back: %v", err)
	}

	return d.signer.SendTransaction(ctx, req)
}

// sendPrivate signs locally and submits the raw transaction to the relay
func (d *Dispatcher) sendPrivate(ctx context.Context, req TxRequest) (common.Hash, error) {
	raw, err := d.signer.SignTransaction(ctx, req)
	if err != nil {
		return common.Hash{}, err
	}

	client, err := rpc.DialContext(ctx, d.relay.URL)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to connect to relay: %v", err)
	}
	defer client.Close()

	var hash common.Hash
	if err := client.CallContext(ctx, &hash, "eth_sendRawTransaction", hexutil.Encode(raw)); err != nil {
		return common.Hash{}, fmt.Errorf("relay rejected transaction: %v", err)
	}
	return hash, nil
}

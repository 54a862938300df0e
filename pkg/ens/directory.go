package ens

import (
	"context"

	"github.com/whisperfi/whisperd/pkg/models"
)

// Directory is the strategy marketplace surface over one resolver:
// reading published records and encoding the transaction that writes one
type Directory struct {
	resolver TextResolver
}

// NewDirectory creates a directory backed by the given resolver
func NewDirectory(resolver TextResolver) *Directory {
	return &Directory{resolver: resolver}
}

// Lookup fetches every well-known strategy record under an ENS name
func (d *Directory) Lookup(ctx context.Context, ensName string) models.StrategyLookupResult {
	return LookupStrategies(ctx, d.resolver, ensName)
}

// Publish encodes the setText transaction that stores a strategy record
// under an ENS name, ready for the name owner's wallet to sign
func (d *Directory) Publish(ensName, strategyName string, config models.StrategyConfig) (Transaction, error) {
	value, err := SerializeStrategy(config)
	if err != nil {
		return Transaction{}, err
	}
	return BuildSetText(ensName, StrategyKey(strategyName), value)
}

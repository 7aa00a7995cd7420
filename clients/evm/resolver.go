package evm

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/kemsguy7/wagmi-app/wallet"
)

// Resolver provides access to chain-specific Ethereum clients.
type Resolver struct {
	clients map[uint64]*ethclient.Client
}

var _ wallet.ChainVerifier = (*Resolver)(nil)

func NewResolver(clients map[uint64]*ethclient.Client) *Resolver {
	return &Resolver{clients: clients}
}

// GetClient returns the client for the specified chain ID.
func (r *Resolver) GetClient(chainID uint64) (*ethclient.Client, error) {
	client, ok := r.clients[chainID]
	if !ok {
		return nil, wallet.NewError(wallet.KindUnsupportedChain, fmt.Sprintf("No RPC client for chain %d", chainID))
	}

	return client, nil
}

// VerifyChain succeeds when the app can serve the chain.
func (r *Resolver) VerifyChain(_ context.Context, chainID uint64) error {
	_, err := r.GetClient(chainID)
	return err
}

func (r *Resolver) Close() {
	for _, client := range r.clients {
		client.Close()
	}
}

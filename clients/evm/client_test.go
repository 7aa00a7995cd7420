package evm

import (
	"context"
	"math/big"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/kemsguy7/wagmi-app/config"
	"github.com/kemsguy7/wagmi-app/logging/logtest"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	chainID uint64
}

func (n *fakeNode) ChainId() *hexutil.Big {
	return (*hexutil.Big)(new(big.Int).SetUint64(n.chainID))
}

func serveNode(t *testing.T, chainID uint64) string {
	t.Helper()

	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", &fakeNode{chainID: chainID}))

	ts := httptest.NewServer(server)
	t.Cleanup(func() {
		ts.Close()
		server.Stop()
	})

	return ts.URL
}

func TestNewFromConfig(t *testing.T) {
	t.Run("matching chain", func(t *testing.T) {
		// ARRANGE
		chain := config.ChainConfig{ChainID: 8453, RPCURL: serveNode(t, 8453)}

		// ACT
		client, err := NewFromConfig(context.Background(), chain, logtest.New(t))

		// ASSERT
		require.NoError(t, err)
		require.NotNil(t, client)
		client.Close()
	})

	t.Run("wrong chain", func(t *testing.T) {
		// ARRANGE
		chain := config.ChainConfig{ChainID: 1, RPCURL: serveNode(t, 10)}

		// ACT
		client, err := NewFromConfig(context.Background(), chain, logtest.New(t))

		// ASSERT
		require.ErrorIs(t, err, ErrChainMismatch)
		assert.Nil(t, client)
	})

	t.Run("unreachable endpoint is tolerated", func(t *testing.T) {
		// ARRANGE
		ts := httptest.NewServer(nil)
		url := ts.URL
		ts.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()

		// ACT
		client, err := NewFromConfig(ctx, config.ChainConfig{ChainID: 1, RPCURL: url}, logtest.New(t))

		// ASSERT
		require.NoError(t, err)
		require.NotNil(t, client)
		client.Close()
	})
}

func TestResolveClientsFromConfig(t *testing.T) {
	t.Run("dials every chain", func(t *testing.T) {
		// ARRANGE
		cfg := config.Config{Chains: []config.ChainConfig{
			{ChainID: 1, RPCURL: serveNode(t, 1)},
			{ChainID: 10, RPCURL: serveNode(t, 10)},
		}}

		// ACT
		clients, err := ResolveClientsFromConfig(context.Background(), cfg, logtest.New(t))

		// ASSERT
		require.NoError(t, err)
		assert.Len(t, clients, 2)
		assert.Contains(t, clients, uint64(1))
		assert.Contains(t, clients, uint64(10))
		NewResolver(clients).Close()
	})

	t.Run("fails on misconfigured chain", func(t *testing.T) {
		// ARRANGE
		cfg := config.Config{Chains: []config.ChainConfig{
			{ChainID: 1, RPCURL: serveNode(t, 1)},
			{ChainID: 10, RPCURL: serveNode(t, 137)},
		}}

		// ACT
		_, err := ResolveClientsFromConfig(context.Background(), cfg, logtest.New(t))

		// ASSERT
		require.ErrorIs(t, err, ErrChainMismatch)
		assert.Contains(t, err.Error(), "chain 10")
	})
}

func TestResolver(t *testing.T) {
	// ARRANGE
	resolver := NewResolver(map[uint64]*ethclient.Client{1: nil})

	// ACT
	okErr := resolver.VerifyChain(context.Background(), 1)
	missingErr := resolver.VerifyChain(context.Background(), 42161)

	// ASSERT
	assert.NoError(t, okErr)
	assert.Equal(t, wallet.KindUnsupportedChain, wallet.KindOf(missingErr))
}

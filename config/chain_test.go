package config

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChainNameFromID(t *testing.T) {
	tests := []struct {
		chainID uint64
		name    string
		wantErr bool
	}{
		{EthereumMainnetChainID, "Ethereum", false},
		{BaseMainnetChainID, "Base", false},
		{OptimismMainnetChainID, "OP Mainnet", false},
		{PolygonMainnetChainID, "Polygon", false},
		{ArbitrumMainnetChainID, "Arbitrum One", false},
		{ethereumSepoliaChainID, "Sepolia", false},
		{999999, "", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("chainID=%d", tt.chainID), func(t *testing.T) {
			got, err := chainNameFromID(tt.chainID)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				require.Equal(t, tt.name, got)
			}
		})
	}
}

func TestResolveChain(t *testing.T) {
	t.Run("preset", func(t *testing.T) {
		chain, err := resolveChain(EthereumMainnetChainID, "")
		require.NoError(t, err)
		require.Equal(t, "https://eth.merkle.io", chain.RPCURL)
		require.True(t, chain.SupportsENS)
	})

	t.Run("preset with override", func(t *testing.T) {
		chain, err := resolveChain(BaseMainnetChainID, "http://localhost:8545")
		require.NoError(t, err)
		require.Equal(t, "http://localhost:8545", chain.RPCURL)
		require.Equal(t, "Base", chain.Name)
		require.False(t, chain.SupportsENS)
	})

	t.Run("unknown chain without rpc", func(t *testing.T) {
		_, err := resolveChain(31337, "")
		require.ErrorContains(t, err, "unsupported chain ID: 31337")
	})

	t.Run("unknown chain with rpc", func(t *testing.T) {
		chain, err := resolveChain(31337, "http://localhost:8545")
		require.NoError(t, err)
		require.Equal(t, "Chain 31337", chain.Name)
		require.Equal(t, "ETH", chain.Symbol)
	})
}

func TestChainName(t *testing.T) {
	require.Equal(t, "arbitrum_one", ChainName(ArbitrumMainnetChainID))
	require.Equal(t, "chain_31337", ChainName(31337))
}

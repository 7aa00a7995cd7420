package config

import "fmt"

const (
	EthereumMainnetChainID = 1
	OptimismMainnetChainID = 10
	PolygonMainnetChainID  = 137
	BaseMainnetChainID     = 8453
	ArbitrumMainnetChainID = 42161

	ethereumSepoliaChainID = 11155111
	baseSepoliaChainID     = 84532

	defaultChains = "1,8453,10,137,42161"
)

// chainPreset contains the static metadata of a known network.
type chainPreset struct {
	Name       string
	Symbol     string
	Decimals   int
	DefaultRPC string
	ENS        bool
}

var chainPresets = map[uint64]chainPreset{
	EthereumMainnetChainID: {
		Name:       "Ethereum",
		Symbol:     "ETH",
		Decimals:   18,
		DefaultRPC: "https://eth.merkle.io",
		ENS:        true,
	},
	BaseMainnetChainID: {
		Name:       "Base",
		Symbol:     "ETH",
		Decimals:   18,
		DefaultRPC: "https://mainnet.base.org",
	},
	OptimismMainnetChainID: {
		Name:       "OP Mainnet",
		Symbol:     "ETH",
		Decimals:   18,
		DefaultRPC: "https://mainnet.optimism.io",
	},
	PolygonMainnetChainID: {
		Name:       "Polygon",
		Symbol:     "POL",
		Decimals:   18,
		DefaultRPC: "https://polygon-rpc.com",
	},
	ArbitrumMainnetChainID: {
		Name:       "Arbitrum One",
		Symbol:     "ETH",
		Decimals:   18,
		DefaultRPC: "https://arb1.arbitrum.io/rpc",
	},
	ethereumSepoliaChainID: {
		Name:       "Sepolia",
		Symbol:     "ETH",
		Decimals:   18,
		DefaultRPC: "https://sepolia.drpc.org",
	},
	baseSepoliaChainID: {
		Name:       "Base Sepolia",
		Symbol:     "ETH",
		Decimals:   18,
		DefaultRPC: "https://sepolia.base.org",
	},
}

// ChainConfig describes one chain the application can target.
type ChainConfig struct {
	ChainID  uint64 `json:"id"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	RPCURL   string `json:"-"`

	// SupportsENS is true for chains hosting the ENS registry.
	SupportsENS bool `json:"-"`
}

// chainNameFromID returns the display name for a known chain ID
func chainNameFromID(chainID uint64) (string, error) {
	preset, ok := chainPresets[chainID]
	if !ok {
		return "", fmt.Errorf("unsupported chain ID: %d", chainID)
	}

	return preset.Name, nil
}

// resolveChain builds a ChainConfig from the preset table. rpcOverride wins over the
// preset RPC; chains without a preset are accepted only with an override.
func resolveChain(chainID uint64, rpcOverride string) (ChainConfig, error) {
	preset, ok := chainPresets[chainID]
	if !ok {
		if rpcOverride == "" {
			return ChainConfig{}, fmt.Errorf("unsupported chain ID: %d (set an RPC URL to add it)", chainID)
		}

		return ChainConfig{
			ChainID:  chainID,
			Name:     fmt.Sprintf("Chain %d", chainID),
			Symbol:   "ETH",
			Decimals: 18,
			RPCURL:   rpcOverride,
		}, nil
	}

	rpcURL := preset.DefaultRPC
	if rpcOverride != "" {
		rpcURL = rpcOverride
	}

	return ChainConfig{
		ChainID:     chainID,
		Name:        preset.Name,
		Symbol:      preset.Symbol,
		Decimals:    preset.Decimals,
		RPCURL:      rpcURL,
		SupportsENS: preset.ENS,
	}, nil
}

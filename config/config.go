package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	envPrefix = "WAGMI"

	// DefaultRelayURL is the pairing endpoint used by the QR connector.
	DefaultRelayURL = "https://relay.walletconnect.org"

	// DefaultInjectedEndpoint is where desktop wallets such as Frame expose their provider.
	DefaultInjectedEndpoint = "http://127.0.0.1:1248"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port           string
	AllowedOrigins string
	RequestTimeout time.Duration

	// Chains in display order. Static for the process lifetime.
	Chains         []ChainConfig
	InitialChainID uint64

	Connectors ConnectorsConfig
	Relay      RelayConfig

	// ProbeTimeout bounds every readiness probe and provider lookup.
	ProbeTimeout time.Duration

	// Query cache settings
	CacheTTL        time.Duration
	CacheRenderWait time.Duration
}

// ConnectorsConfig holds the wallet connector endpoints. An empty endpoint means the
// corresponding wallet is not installed.
type ConnectorsConfig struct {
	MetaMaskEndpoint   string
	CoinbaseEndpoint   string
	InjectedEndpoint   string
	KeystoreDir        string
	KeystorePassphrase string
	ClefEndpoint       string
}

// RelayConfig configures the QR-code relay connector.
type RelayConfig struct {
	ProjectID string
	URL       string
}

// Enabled reports whether the relay can be used at all.
func (r RelayConfig) Enabled() bool {
	return r.ProjectID != "" && r.URL != ""
}

// LoadConfig loads configuration from .env, environment variables (WAGMI_*) and an
// optional YAML file.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("allowed_origins", "")
	// wallet approvals wait on the user
	v.SetDefault("request_timeout", 2*time.Minute)
	v.SetDefault("chains", defaultChains)
	v.SetDefault("initial_chain", 0)
	v.SetDefault("probe_timeout", 3*time.Second)
	v.SetDefault("cache.ttl", 30*time.Second)
	v.SetDefault("cache.render_wait", 2*time.Second)
	v.SetDefault("connectors.injected.endpoint", DefaultInjectedEndpoint)
	v.SetDefault("relay.url", DefaultRelayURL)
}

func readConfigFile(v *viper.Viper) error {
	file := v.GetString("config_file")
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "failed to read config file %s", file)
		}

		return nil
	}

	v.AddConfigPath(".")
	v.SetConfigName("wagmi")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "failed to read config file")
		}
	}

	return nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	chainIDs, err := parseChainIDs(v.GetStringSlice("chains"))
	if err != nil {
		return nil, err
	}

	if len(chainIDs) == 0 {
		return nil, errors.New("at least one chain must be configured")
	}

	chains := make([]ChainConfig, 0, len(chainIDs))
	for _, id := range chainIDs {
		chain, err := resolveChain(id, v.GetString(fmt.Sprintf("rpc.%d", id)))
		if err != nil {
			return nil, err
		}

		chains = append(chains, chain)
	}

	cfg := &Config{
		Port:           v.GetString("port"),
		AllowedOrigins: v.GetString("allowed_origins"),
		RequestTimeout: v.GetDuration("request_timeout"),
		Chains:         chains,
		InitialChainID: v.GetUint64("initial_chain"),
		Connectors: ConnectorsConfig{
			MetaMaskEndpoint:   v.GetString("connectors.metamask.endpoint"),
			CoinbaseEndpoint:   v.GetString("connectors.coinbase.endpoint"),
			InjectedEndpoint:   v.GetString("connectors.injected.endpoint"),
			KeystoreDir:        v.GetString("connectors.keystore.dir"),
			KeystorePassphrase: v.GetString("connectors.keystore.passphrase"),
			ClefEndpoint:       v.GetString("connectors.clef.endpoint"),
		},
		Relay: RelayConfig{
			ProjectID: v.GetString("relay.project_id"),
			URL:       v.GetString("relay.url"),
		},
		ProbeTimeout:    v.GetDuration("probe_timeout"),
		CacheTTL:        v.GetDuration("cache.ttl"),
		CacheRenderWait: v.GetDuration("cache.render_wait"),
	}

	if cfg.InitialChainID == 0 {
		cfg.InitialChainID = chains[0].ChainID
	}

	if _, ok := cfg.ChainByID(cfg.InitialChainID); !ok {
		return nil, fmt.Errorf("initial chain %d is not in the configured chain list", cfg.InitialChainID)
	}

	return cfg, nil
}

// parseChainIDs accepts both YAML lists and comma separated env values.
func parseChainIDs(raw []string) ([]uint64, error) {
	var (
		ids  []uint64
		seen = make(map[uint64]struct{})
	)

	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}

			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid chain id %q", part)
			}

			if _, dup := seen[id]; dup {
				continue
			}

			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	return ids, nil
}

// ChainByID returns the configured chain with the given id.
func (c *Config) ChainByID(chainID uint64) (ChainConfig, bool) {
	for _, chain := range c.Chains {
		if chain.ChainID == chainID {
			return chain, true
		}
	}

	return ChainConfig{}, false
}

// ChainName returns a human-readable chain name suitable for metric labels.
func ChainName(chainID uint64) string {
	name, err := chainNameFromID(chainID)
	if err != nil {
		return fmt.Sprintf("chain_%d", chainID)
	}

	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

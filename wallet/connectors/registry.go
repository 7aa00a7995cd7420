// Package connectors holds the wallet adapters the app can connect through.
package connectors

import (
	"github.com/kemsguy7/wagmi-app/config"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/rs/zerolog"
)

const (
	MetaMaskID = "metaMask"
	CoinbaseID = "coinbaseWallet"
	InjectedID = "injected"
	KeystoreID = "keystore"
	ClefID     = "clef"
	RelayID    = "walletConnect"
)

// InstallLinks are the download pages shown next to the connector list.
var InstallLinks = []InstallLink{
	{Name: "MetaMask", URL: "https://metamask.io/download/"},
	{Name: "Coinbase Wallet", URL: "https://www.coinbase.com/wallet/downloads"},
}

type InstallLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// FromConfig builds the registry in display order. Every connector is listed even
// when unconfigured; readiness decides whether it can be selected.
func FromConfig(cfg config.ConnectorsConfig, relay config.RelayConfig, logger zerolog.Logger) *wallet.Registry {
	return wallet.NewRegistry(
		NewInjected(MetaMaskID, "MetaMask", cfg.MetaMaskEndpoint, logger),
		NewInjected(CoinbaseID, "Coinbase Wallet", cfg.CoinbaseEndpoint, logger),
		NewInjected(InjectedID, "Injected", cfg.InjectedEndpoint, logger),
		NewKeystore(OpenKeystore(cfg.KeystoreDir), cfg.KeystorePassphrase, logger),
		NewClef(cfg.ClefEndpoint, logger),
		NewRelay(relay.URL, relay.ProjectID, logger),
	)
}

// Package wallet holds the connection core: connectors and their optional
// capabilities, readiness probing, connection negotiation, chain switching and
// the single connection state store.
package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Connector is an adapter to one specific wallet implementation.
type Connector interface {
	ID() string
	Name() string

	// Connect asks the wallet for an account. chainID is the desired chain, nil means
	// whatever the wallet is on.
	Connect(ctx context.Context, chainID *uint64) (Session, error)
	Disconnect(ctx context.Context) error
}

// Authorizer is implemented by connectors that can tell whether the wallet already
// granted access to this application.
type Authorizer interface {
	IsAuthorized(ctx context.Context) (bool, error)
}

// ProviderSource is implemented by connectors that can hand out an active provider.
// A nil Provider with a nil error means no provider is available.
type ProviderSource interface {
	Provider(ctx context.Context) (Provider, error)
}

// ChainSwitcher is implemented by connectors whose wallet tracks the active chain.
type ChainSwitcher interface {
	SwitchChain(ctx context.Context, chainID uint64) error
}

// QRConnector marks connectors that pair with a remote wallet (QR code) instead of
// a locally installed one.
type QRConnector interface {
	Configured() bool
}

// Provider is a handle through which requests reach a wallet.
type Provider interface {
	Accounts(ctx context.Context) ([]common.Address, error)
}

// Session is the result of a successful connect.
type Session struct {
	Address common.Address

	// ChainID is 0 when the wallet is chain agnostic.
	ChainID uint64
}

// Chain is a network the application can target.
type Chain struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// Registry is the ordered list of connectors known at startup.
type Registry struct {
	connectors []Connector
}

func NewRegistry(connectors ...Connector) *Registry {
	return &Registry{connectors: connectors}
}

// Connectors returns a copy of the connector list.
func (r *Registry) Connectors() []Connector {
	out := make([]Connector, len(r.connectors))
	copy(out, r.connectors)

	return out
}

// Lookup returns the connector with the given id.
func (r *Registry) Lookup(id string) (Connector, bool) {
	for _, c := range r.connectors {
		if c.ID() == id {
			return c, true
		}
	}

	return nil, false
}

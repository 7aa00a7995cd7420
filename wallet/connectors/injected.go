package connectors

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Injected talks EIP-1193 over JSON-RPC to a wallet that exposes its provider on a
// local endpoint (browser extension bridge, desktop wallet). An empty endpoint means
// the wallet is not installed.
type Injected struct {
	id       string
	name     string
	endpoint string
	logger   zerolog.Logger

	mu     sync.Mutex
	client *rpc.Client
}

var (
	_ wallet.Connector      = (*Injected)(nil)
	_ wallet.Authorizer     = (*Injected)(nil)
	_ wallet.ProviderSource = (*Injected)(nil)
	_ wallet.ChainSwitcher  = (*Injected)(nil)
)

// JSON-RPC "method not found".
const methodNotFound = -32601

func NewInjected(id, name, endpoint string, logger zerolog.Logger) *Injected {
	return &Injected{
		id:       id,
		name:     name,
		endpoint: endpoint,
		logger: logger.With().
			Str(logging.FieldModule, "injected_connector").
			Str(logging.FieldConnector, id).
			Logger(),
	}
}

func (c *Injected) ID() string   { return c.id }
func (c *Injected) Name() string { return c.name }

// IsAuthorized reports whether the wallet already exposes accounts to us.
func (c *Injected) IsAuthorized(ctx context.Context) (bool, error) {
	var accounts []common.Address
	if err := c.call(ctx, &accounts, "eth_accounts"); err != nil {
		return false, err
	}

	return len(accounts) > 0, nil
}

// Provider returns the provider handle if the wallet answers on its endpoint.
func (c *Injected) Provider(ctx context.Context) (wallet.Provider, error) {
	if c.endpoint == "" {
		return nil, nil
	}

	var chainID hexutil.Uint64
	if err := c.call(ctx, &chainID, "eth_chainId"); err != nil {
		return nil, err
	}

	return &injectedProvider{connector: c}, nil
}

func (c *Injected) Connect(ctx context.Context, chainID *uint64) (wallet.Session, error) {
	var accounts []common.Address
	if err := c.call(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return wallet.Session{}, err
	}

	if len(accounts) == 0 {
		return wallet.Session{}, wallet.NewError(wallet.KindUnauthorized, fmt.Sprintf("%s did not expose any account", c.name))
	}

	if chainID != nil {
		if err := c.SwitchChain(ctx, *chainID); err != nil {
			return wallet.Session{}, err
		}
	}

	var current hexutil.Uint64
	if err := c.call(ctx, &current, "eth_chainId"); err != nil {
		return wallet.Session{}, err
	}

	c.logger.Debug().
		Str(logging.FieldAddress, accounts[0].Hex()).
		Uint64(logging.FieldChain, uint64(current)).
		Msg("Accounts granted")

	return wallet.Session{Address: accounts[0], ChainID: uint64(current)}, nil
}

// SwitchChain asks the wallet to change its active chain (EIP-3326).
func (c *Injected) SwitchChain(ctx context.Context, chainID uint64) error {
	params := map[string]string{"chainId": hexutil.EncodeUint64(chainID)}

	return c.call(ctx, nil, "wallet_switchEthereumChain", params)
}

// Disconnect revokes the account permission (EIP-2255) and drops the client. Wallets
// without permission revocation are simply forgotten.
func (c *Injected) Disconnect(ctx context.Context) error {
	defer c.close()

	params := map[string]struct{}{"eth_accounts": {}}

	err := c.call(ctx, nil, "wallet_revokePermissions", params)

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == methodNotFound {
		return nil
	}

	return err
}

func (c *Injected) call(ctx context.Context, result any, method string, args ...any) error {
	client, err := c.dial(ctx)
	if err != nil {
		return err
	}

	if err := client.CallContext(ctx, result, method, args...); err != nil {
		var rpcErr rpc.Error
		if errors.As(err, &rpcErr) {
			return err
		}

		if ctx.Err() != nil {
			return wallet.WrapError(wallet.KindTimeout, fmt.Sprintf("%s did not respond", c.name), err)
		}

		// transport failure: nothing is listening
		return wallet.WrapError(wallet.KindProviderMissing, fmt.Sprintf("%s provider not found", c.name), err)
	}

	return nil
}

func (c *Injected) dial(ctx context.Context) (*rpc.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.endpoint == "" {
		return nil, wallet.NewError(wallet.KindProviderMissing, fmt.Sprintf("%s is not installed", c.name))
	}

	if c.client != nil {
		return c.client, nil
	}

	client, err := rpc.DialContext(ctx, c.endpoint)
	if err != nil {
		return nil, wallet.WrapError(wallet.KindProviderMissing, fmt.Sprintf("%s provider not found", c.name), err)
	}

	c.client = client

	return client, nil
}

func (c *Injected) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
}

type injectedProvider struct {
	connector *Injected
}

func (p *injectedProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.connector.call(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}

	return accounts, nil
}

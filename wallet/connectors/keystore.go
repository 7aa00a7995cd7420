package connectors

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/rs/zerolog"
)

// Keystore is a local wallet backed by a go-ethereum keystore directory.
// It is chain agnostic: a session keeps whatever chain the app is on.
type Keystore struct {
	ks         *keystore.KeyStore
	passphrase string
	logger     zerolog.Logger

	mu       sync.Mutex
	unlocked *accounts.Account
}

var (
	_ wallet.Connector      = (*Keystore)(nil)
	_ wallet.Authorizer     = (*Keystore)(nil)
	_ wallet.ProviderSource = (*Keystore)(nil)
)

// NewKeystore wraps ks. A nil keystore is a connector that is never ready.
func NewKeystore(ks *keystore.KeyStore, passphrase string, logger zerolog.Logger) *Keystore {
	return &Keystore{
		ks:         ks,
		passphrase: passphrase,
		logger: logger.With().
			Str(logging.FieldModule, "keystore_connector").
			Str(logging.FieldConnector, KeystoreID).
			Logger(),
	}
}

// OpenKeystore opens the keystore directory with light scrypt parameters.
func OpenKeystore(dir string) *keystore.KeyStore {
	if dir == "" {
		return nil
	}

	return keystore.NewKeyStore(dir, keystore.LightScryptN, keystore.LightScryptP)
}

func (c *Keystore) ID() string   { return KeystoreID }
func (c *Keystore) Name() string { return "Keystore" }

// IsAuthorized is true when any keystore wallet is already unlocked.
func (c *Keystore) IsAuthorized(_ context.Context) (bool, error) {
	if c.ks == nil {
		return false, nil
	}

	for _, w := range c.ks.Wallets() {
		status, err := w.Status()
		if err != nil {
			continue
		}

		if status == "Unlocked" {
			return true, nil
		}
	}

	return false, nil
}

func (c *Keystore) Provider(_ context.Context) (wallet.Provider, error) {
	if c.ks == nil || len(c.ks.Accounts()) == 0 {
		return nil, nil
	}

	return keystoreProvider{ks: c.ks}, nil
}

func (c *Keystore) Connect(_ context.Context, _ *uint64) (wallet.Session, error) {
	if c.ks == nil {
		return wallet.Session{}, wallet.NewError(wallet.KindProviderMissing, "Keystore is not configured")
	}

	accs := c.ks.Accounts()
	if len(accs) == 0 {
		return wallet.Session{}, wallet.NewError(wallet.KindProviderMissing, "Keystore holds no account")
	}

	account := accs[0]
	if err := c.ks.Unlock(account, c.passphrase); err != nil {
		return wallet.Session{}, wallet.WrapError(wallet.KindUnauthorized, "Could not unlock keystore account", err)
	}

	c.mu.Lock()
	c.unlocked = &account
	c.mu.Unlock()

	c.logger.Debug().Str(logging.FieldAddress, account.Address.Hex()).Msg("Keystore account unlocked")

	return wallet.Session{Address: account.Address}, nil
}

// Disconnect locks the account unlocked by Connect.
func (c *Keystore) Disconnect(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unlocked == nil {
		return nil
	}

	err := c.ks.Lock(c.unlocked.Address)
	c.unlocked = nil

	return err
}

type keystoreProvider struct {
	ks *keystore.KeyStore
}

func (p keystoreProvider) Accounts(_ context.Context) ([]common.Address, error) {
	accs := p.ks.Accounts()
	out := make([]common.Address, 0, len(accs))

	for _, a := range accs {
		out = append(out, a.Address)
	}

	return out, nil
}

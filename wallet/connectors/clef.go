package connectors

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/external"
	"github.com/ethereum/go-ethereum/common"
	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Clef connects to a go-ethereum external signer. Listing accounts prompts the user
// in the signer UI, so every call is bounded by the caller's context.
type Clef struct {
	endpoint string
	logger   zerolog.Logger

	mu     sync.Mutex
	signer *external.ExternalSigner
}

var (
	_ wallet.Connector      = (*Clef)(nil)
	_ wallet.ProviderSource = (*Clef)(nil)
)

func NewClef(endpoint string, logger zerolog.Logger) *Clef {
	return &Clef{
		endpoint: endpoint,
		logger: logger.With().
			Str(logging.FieldModule, "clef_connector").
			Str(logging.FieldConnector, ClefID).
			Logger(),
	}
}

func (c *Clef) ID() string   { return ClefID }
func (c *Clef) Name() string { return "Clef" }

func (c *Clef) Provider(ctx context.Context) (wallet.Provider, error) {
	if c.endpoint == "" {
		return nil, nil
	}

	signer, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}

	return clefProvider{signer: signer}, nil
}

func (c *Clef) Connect(ctx context.Context, _ *uint64) (wallet.Session, error) {
	signer, err := c.dial(ctx)
	if err != nil {
		return wallet.Session{}, err
	}

	accounts, err := withContext(ctx, func() ([]common.Address, error) {
		return clefProvider{signer: signer}.Accounts(ctx)
	})
	if err != nil {
		return wallet.Session{}, err
	}

	if len(accounts) == 0 {
		return wallet.Session{}, wallet.NewError(wallet.KindUnauthorized, "Clef did not expose any account")
	}

	return wallet.Session{Address: accounts[0]}, nil
}

func (c *Clef) Disconnect(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.signer == nil {
		return nil
	}

	err := c.signer.Close()
	c.signer = nil

	return err
}

func (c *Clef) dial(ctx context.Context) (*external.ExternalSigner, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.endpoint == "" {
		return nil, wallet.NewError(wallet.KindProviderMissing, "Clef endpoint is not configured")
	}

	if c.signer != nil {
		return c.signer, nil
	}

	// NewExternalSigner pings account_version, which blocks without a deadline.
	signer, err := withContextRelease(ctx, func() (*external.ExternalSigner, error) {
		return external.NewExternalSigner(c.endpoint)
	}, func(late *external.ExternalSigner) {
		if err := late.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Failed to close abandoned signer")
		}
	})
	if err != nil {
		if wallet.KindOf(err) == wallet.KindTimeout {
			return nil, err
		}

		return nil, wallet.WrapError(wallet.KindProviderMissing, "Clef signer not found", err)
	}

	c.signer = signer

	return signer, nil
}

type clefProvider struct {
	signer *external.ExternalSigner
}

func (p clefProvider) Accounts(_ context.Context) ([]common.Address, error) {
	accs := p.signer.Accounts()
	out := make([]common.Address, 0, len(accs))

	for _, a := range accs {
		out = append(out, a.Address)
	}

	return out, nil
}

// withContext runs fn and gives up when ctx is done. fn keeps running in the
// background; its result is dropped.
func withContext[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	return withContextRelease(ctx, fn, nil)
}

// withContextRelease is withContext for results that hold resources: a successful
// result nobody waits for anymore is handed to release.
func withContextRelease[T any](ctx context.Context, fn func() (T, error), release func(T)) (T, error) {
	type result struct {
		value T
		err   error
	}

	// unbuffered: a result is either received by the caller or released here
	done := make(chan result)
	go func() {
		v, err := fn()

		select {
		case done <- result{value: v, err: err}:
		case <-ctx.Done():
			if err == nil && release != nil {
				release(v)
			}
		}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, wallet.WrapError(wallet.KindTimeout, "Wallet did not respond in time", errors.WithStack(ctx.Err()))
	}
}

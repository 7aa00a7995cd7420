package evm

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/kemsguy7/wagmi-app/config"
	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	verifyTimeout  = 5 * time.Second
	verifyAttempts = 3
)

// ErrChainMismatch is returned when an RPC endpoint serves a different chain than configured.
var ErrChainMismatch = errors.New("rpc endpoint serves a different chain")

// ResolveClientsFromConfig provisions a map of [chainID] => ethclient.Client based on the config.
func ResolveClientsFromConfig(
	ctx context.Context,
	cfg config.Config,
	logger zerolog.Logger,
) (map[uint64]*ethclient.Client, error) {
	var (
		clients             = make(map[uint64]*ethclient.Client, len(cfg.Chains))
		mu                  = sync.Mutex{}
		errGroup, ctxShared = errgroup.WithContext(ctx)
	)

	for _, chain := range cfg.Chains {
		errGroup.Go(func() error {
			client, err := NewFromConfig(ctxShared, chain, logger)
			if err != nil {
				return errors.Wrapf(err, "failed to create client for chain %d", chain.ChainID)
			}

			mu.Lock()
			clients[chain.ChainID] = client
			mu.Unlock()

			return nil
		})
	}

	if err := errGroup.Wait(); err != nil {
		for _, client := range clients {
			client.Close()
		}

		return nil, err
	}

	return clients, nil
}

// NewFromConfig creates a new ethclient.Client from a chain configuration.
// An unreachable endpoint is tolerated: public RPCs come and go, and balance
// queries retry on their own. An endpoint serving the wrong chain is fatal.
func NewFromConfig(
	ctx context.Context,
	chain config.ChainConfig,
	logger zerolog.Logger,
) (*ethclient.Client, error) {
	logger = logger.With().
		Uint64(logging.FieldChain, chain.ChainID).
		Str(logging.FieldModule, "evm_client").
		Logger()

	var (
		rpcClient *rpc.Client
		err       error
	)

	if isWebSocketURL(chain.RPCURL) {
		rpcClient, err = rpc.DialWebsocket(ctx, chain.RPCURL, "")
	} else {
		rpcClient, err = rpc.DialContext(ctx, chain.RPCURL)
	}

	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to chain")
	}

	evmClient := ethclient.NewClient(rpcClient)

	remoteChainID, err := verifyChainID(ctx, evmClient, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("RPC endpoint is unreachable, continuing without verification")
		return evmClient, nil
	}

	if remoteChainID != chain.ChainID {
		evmClient.Close()
		return nil, errors.Wrapf(ErrChainMismatch, "expected chain %d, got %d", chain.ChainID, remoteChainID)
	}

	logger.Info().
		Bool("is_websocket", isWebSocketURL(chain.RPCURL)).
		Msg("Successfully created EVM client")

	return evmClient, nil
}

// verifyChainID asks the endpoint for its chain id, retrying transient failures.
func verifyChainID(ctx context.Context, client *ethclient.Client, logger zerolog.Logger) (uint64, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = verifyTimeout

	return backoff.Retry(ctx, func() (uint64, error) {
		callCtx, cancel := context.WithTimeout(ctx, verifyTimeout)
		defer cancel()

		id, err := client.ChainID(callCtx)
		if err != nil {
			return 0, err
		}

		return id.Uint64(), nil
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(verifyAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Debug().Err(err).Dur("retry_in", next).Msg("Chain id query failed")
		}),
	)
}

func isWebSocketURL(url string) bool {
	return strings.HasPrefix(url, "wss://") || strings.HasPrefix(url, "ws://")
}

package services

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/kemsguy7/wagmi-app/config"
	"github.com/kemsguy7/wagmi-app/logging"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ClientResolver provides access to chain-specific Ethereum clients
type ClientResolver interface {
	GetClient(chainID uint64) (*ethclient.Client, error)
}

// Balance is a native-token balance in base units.
type Balance struct {
	Value    *big.Int `json:"value"`
	Symbol   string   `json:"symbol"`
	Decimals uint8    `json:"decimals"`
}

// Account is what the account panel knows about the connected address. Balance and
// Name are fetched independently; either may be missing on a given read.
type Account struct {
	Address common.Address `json:"address"`
	ChainID uint64         `json:"chain_id"`
	Balance *Balance       `json:"balance,omitempty"`
	Name    string         `json:"name,omitempty"`
}

// AccountService reads balances and names through the query cache.
type AccountService struct {
	clients  ClientResolver
	chains   []config.ChainConfig
	balances *QueryCache[*big.Int]
	names    *QueryCache[string]
	logger   zerolog.Logger
}

func NewAccountService(
	clients ClientResolver,
	chains []config.ChainConfig,
	ttl time.Duration,
	renderWait time.Duration,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		clients:  clients,
		chains:   chains,
		balances: NewQueryCache[*big.Int]("balance", ttl, renderWait, logger),
		names:    NewQueryCache[string]("ens_name", ttl, renderWait, logger),
		logger:   logger.With().Str(logging.FieldModule, "account_service").Logger(),
	}
}

// Account returns whatever is available for the connected account within the
// render wait. Nothing is returned for a disconnected state.
func (s *AccountService) Account(ctx context.Context, state wallet.State) (Account, bool) {
	if !state.Connected {
		return Account{}, false
	}

	address := common.HexToAddress(state.Address)
	account := Account{Address: address, ChainID: state.ChainID}

	var g errgroup.Group

	g.Go(func() error {
		balance, err := s.Balance(ctx, state.ChainID, address)
		if err != nil {
			s.logFetchMiss(err, "balance", state)
			return nil
		}

		account.Balance = balance

		return nil
	})

	g.Go(func() error {
		name, err := s.Name(ctx, address)
		if err != nil {
			s.logFetchMiss(err, "name", state)
			return nil
		}

		account.Name = name

		return nil
	})

	_ = g.Wait()

	return account, true
}

// Balance reads the native balance of address on chainID.
func (s *AccountService) Balance(ctx context.Context, chainID uint64, address common.Address) (*Balance, error) {
	chain, ok := s.chain(chainID)
	if !ok {
		return nil, wallet.NewError(wallet.KindUnsupportedChain, fmt.Sprintf("Chain %d is not configured", chainID))
	}

	key := fmt.Sprintf("%d:%s", chainID, strings.ToLower(address.Hex()))

	value, err := s.balances.Get(ctx, key, func(ctx context.Context) (*big.Int, error) {
		client, err := s.clients.GetClient(chainID)
		if err != nil {
			return nil, err
		}

		return client.BalanceAt(ctx, address, nil)
	})
	if err != nil {
		return nil, err
	}

	return &Balance{Value: value, Symbol: chain.Symbol, Decimals: uint8(chain.Decimals)}, nil
}

// Name reverse-resolves address on the first configured chain with ENS. Without such
// a chain every address is nameless.
func (s *AccountService) Name(ctx context.Context, address common.Address) (string, error) {
	chainID, ok := s.ensChain()
	if !ok {
		return "", nil
	}

	return s.names.Get(ctx, strings.ToLower(address.Hex()), func(ctx context.Context) (string, error) {
		client, err := s.clients.GetClient(chainID)
		if err != nil {
			return "", err
		}

		return NewENSResolver(client).LookupAddress(ctx, address)
	})
}

// Refresh drops cached data for the account so the next read refetches it.
func (s *AccountService) Refresh(state wallet.State) {
	address := strings.ToLower(common.HexToAddress(state.Address).Hex())

	s.balances.Invalidate(fmt.Sprintf("%d:%s", state.ChainID, address))
	s.names.Invalidate(address)
}

func (s *AccountService) chain(chainID uint64) (config.ChainConfig, bool) {
	for _, c := range s.chains {
		if c.ChainID == chainID {
			return c, true
		}
	}

	return config.ChainConfig{}, false
}

func (s *AccountService) ensChain() (uint64, bool) {
	for _, c := range s.chains {
		if c.SupportsENS {
			return c.ChainID, true
		}
	}

	return 0, false
}

func (s *AccountService) logFetchMiss(err error, what string, state wallet.State) {
	level := zerolog.WarnLevel
	if errors.Is(err, ErrNotReady) {
		level = zerolog.DebugLevel
	}

	s.logger.WithLevel(level).
		Err(err).
		Str(logging.FieldAddress, state.Address).
		Uint64(logging.FieldChain, state.ChainID).
		Msgf("%s is not available", what)
}

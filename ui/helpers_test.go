package ui

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/kemsguy7/wagmi-app/config"
	"github.com/kemsguy7/wagmi-app/logging/logtest"
	"github.com/kemsguy7/wagmi-app/services"
	"github.com/kemsguy7/wagmi-app/wallet"
)

const testAddress = "0x1234567890abcdef1234567890abcdef12345678"

// stubConnector is ready when authorized is set.
type stubConnector struct {
	id, name   string
	authorized bool
	connect    func(ctx context.Context) (wallet.Session, error)
}

func (c *stubConnector) ID() string   { return c.id }
func (c *stubConnector) Name() string { return c.name }

func (c *stubConnector) IsAuthorized(context.Context) (bool, error) {
	return c.authorized, nil
}

func (c *stubConnector) Connect(ctx context.Context, _ *uint64) (wallet.Session, error) {
	if c.connect != nil {
		return c.connect(ctx)
	}

	return wallet.Session{Address: common.HexToAddress(testAddress)}, nil
}

func (c *stubConnector) Disconnect(context.Context) error { return nil }

type stubQRConnector struct {
	stubConnector
	configured bool
}

func (c *stubQRConnector) Configured() bool { return c.configured }

type noClients struct{}

func (noClients) GetClient(uint64) (*ethclient.Client, error) {
	return nil, wallet.NewError(wallet.KindUnsupportedChain, "no client")
}

var testChains = []wallet.Chain{
	{ID: 1, Name: "Ethereum"},
	{ID: 8453, Name: "Base"},
	{ID: 10, Name: "OP Mainnet"},
}

type testApp struct {
	*App
	store *wallet.Store
}

func newTestApp(t *testing.T, connectors ...wallet.Connector) testApp {
	t.Helper()

	logger := logtest.New(t)
	store := wallet.NewStore(1)
	negotiator := wallet.NewNegotiator(store, nil, logger)
	prober := wallet.NewProber(time.Second, nil, logger)
	switcher := wallet.NewSwitcher(testChains, store, negotiator, nil, nil, logger)

	chainConfigs := []config.ChainConfig{
		{ChainID: 1, Name: "Ethereum", Symbol: "ETH", Decimals: 18},
		{ChainID: 8453, Name: "Base", Symbol: "ETH", Decimals: 18},
		{ChainID: 10, Name: "OP Mainnet", Symbol: "ETH", Decimals: 18},
	}
	accounts := services.NewAccountService(noClients{}, chainConfigs, time.Minute, 100*time.Millisecond, logger)

	modal := NewModal(wallet.NewRegistry(connectors...), prober, negotiator, logger)

	return testApp{
		App:   NewApp(store, modal, switcher, negotiator, accounts, logger),
		store: store,
	}
}

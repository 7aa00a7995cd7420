package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

// fakeConnector is a plain connector; capabilities are added by wrapping it.
type fakeConnector struct {
	id, name   string
	connect    func(ctx context.Context, chainID *uint64) (Session, error)
	disconnect func(ctx context.Context) error
}

func (f *fakeConnector) ID() string   { return f.id }
func (f *fakeConnector) Name() string { return f.name }

func (f *fakeConnector) Connect(ctx context.Context, chainID *uint64) (Session, error) {
	if f.connect == nil {
		return Session{Address: common.HexToAddress("0x1234567890abcdef1234567890abcdef12345678")}, nil
	}

	return f.connect(ctx, chainID)
}

func (f *fakeConnector) Disconnect(ctx context.Context) error {
	if f.disconnect == nil {
		return nil
	}

	return f.disconnect(ctx)
}

// probingConnector exposes both probes.
type probingConnector struct {
	fakeConnector
	authorized func(ctx context.Context) (bool, error)
	provider   func(ctx context.Context) (Provider, error)
}

func (p *probingConnector) IsAuthorized(ctx context.Context) (bool, error) {
	return p.authorized(ctx)
}

func (p *probingConnector) Provider(ctx context.Context) (Provider, error) {
	return p.provider(ctx)
}

// providerOnlyConnector has no authorization probe.
type providerOnlyConnector struct {
	fakeConnector
	provider func(ctx context.Context) (Provider, error)
}

func (p *providerOnlyConnector) Provider(ctx context.Context) (Provider, error) {
	return p.provider(ctx)
}

type qrConnector struct {
	fakeConnector
	configured bool
}

func (q *qrConnector) Configured() bool { return q.configured }

type switchingConnector struct {
	fakeConnector
	switchChain func(ctx context.Context, chainID uint64) error
}

func (s *switchingConnector) SwitchChain(ctx context.Context, chainID uint64) error {
	return s.switchChain(ctx, chainID)
}

type staticProvider struct {
	accounts []common.Address
}

func (s staticProvider) Accounts(context.Context) ([]common.Address, error) {
	return s.accounts, nil
}

// mockRecorder records wallet operation outcomes.
type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) ProbeCompleted(connectorID string, ready bool) {
	m.Called(connectorID, ready)
}

func (m *mockRecorder) ConnectCompleted(connectorID string, err error) {
	m.Called(connectorID, err)
}

func (m *mockRecorder) SwitchCompleted(chainID uint64, err error) {
	m.Called(chainID, err)
}

type verifierFunc func(ctx context.Context, chainID uint64) error

func (f verifierFunc) VerifyChain(ctx context.Context, chainID uint64) error {
	return f(ctx, chainID)
}

package connectors

import (
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
)

const (
	testAddress = "0x1234567890abcdef1234567890abcdef12345678"
	otherChain  = uint64(8453)
)

// providerError carries an EIP-1193 code over JSON-RPC.
type providerError struct {
	code    int
	message string
}

func (e providerError) Error() string  { return e.message }
func (e providerError) ErrorCode() int { return e.code }

// fakeWallet is an EIP-1193 wallet served on the eth_ and wallet_ namespaces.
type fakeWallet struct {
	mu         sync.Mutex
	accounts   []common.Address
	authorized bool
	chainID    uint64
	reject     bool
	switches   []uint64
}

func (w *fakeWallet) Accounts() []common.Address {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.authorized {
		return []common.Address{}
	}

	return w.accounts
}

func (w *fakeWallet) RequestAccounts() ([]common.Address, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.reject {
		return nil, providerError{code: 4001, message: "User rejected the request."}
	}

	w.authorized = true

	return w.accounts, nil
}

func (w *fakeWallet) ChainId() hexutil.Uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	return hexutil.Uint64(w.chainID)
}

type switchParams struct {
	ChainID hexutil.Uint64 `json:"chainId"`
}

type walletNamespace struct {
	w *fakeWallet
}

func (n walletNamespace) SwitchEthereumChain(params switchParams) error {
	n.w.mu.Lock()
	defer n.w.mu.Unlock()

	if uint64(params.ChainID) == 999 {
		return providerError{code: 4902, message: "Unrecognized chain ID"}
	}

	n.w.chainID = uint64(params.ChainID)
	n.w.switches = append(n.w.switches, uint64(params.ChainID))

	return nil
}

// serveWallet exposes w over HTTP JSON-RPC. It has no wallet_revokePermissions.
func serveWallet(t *testing.T, w *fakeWallet) string {
	t.Helper()

	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", w))
	require.NoError(t, server.RegisterName("wallet", walletNamespace{w: w}))

	ts := httptest.NewServer(server)
	t.Cleanup(func() {
		ts.Close()
		server.Stop()
	})

	return ts.URL
}

// deadEndpoint returns a URL nothing listens on.
func deadEndpoint(t *testing.T) string {
	t.Helper()

	ts := httptest.NewServer(nil)
	url := ts.URL
	ts.Close()

	return url
}

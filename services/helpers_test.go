package services

import (
	"math/big"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/kemsguy7/wagmi-app/wallet"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const testAddress = "0x1234567890abcdef1234567890abcdef12345678"

var testResolverAddress = common.HexToAddress("0x4976fb03C32e5B8cfe2b6cCB31c09Ba78EBaBa41")

// fakeNode serves eth_getBalance and an ENS registry plus resolver over eth_call.
type fakeNode struct {
	balances     map[common.Address]*big.Int
	names        map[common.Address]string
	forward      map[string]common.Address
	balanceCalls atomic.Int32
	failBalance  bool
}

type callArgs struct {
	To    *common.Address `json:"to"`
	Input hexutil.Bytes   `json:"input"`
	Data  hexutil.Bytes   `json:"data"`
}

func (n *fakeNode) GetBalance(addr common.Address, _ string) (*hexutil.Big, error) {
	n.balanceCalls.Add(1)

	if n.failBalance {
		return nil, errors.New("node is syncing")
	}

	balance, ok := n.balances[addr]
	if !ok {
		balance = new(big.Int)
	}

	return (*hexutil.Big)(balance), nil
}

func (n *fakeNode) Call(args callArgs, _ string) (hexutil.Bytes, error) {
	data := args.Input
	if len(data) == 0 {
		data = args.Data
	}

	method, err := parsedENSABI.MethodById(data[:4])
	if err != nil {
		return nil, err
	}

	in, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}

	node := in[0].([32]byte)

	switch {
	case method.Name == "resolver" && *args.To == ENSRegistryAddress:
		if n.knows(node) {
			return method.Outputs.Pack(testResolverAddress)
		}

		return method.Outputs.Pack(common.Address{})
	case method.Name == "name" && *args.To == testResolverAddress:
		for addr, name := range n.names {
			if Namehash(reverseName(addr)) == node {
				return method.Outputs.Pack(name)
			}
		}

		return method.Outputs.Pack("")
	case method.Name == "addr" && *args.To == testResolverAddress:
		for name, addr := range n.forward {
			if Namehash(name) == node {
				return method.Outputs.Pack(addr)
			}
		}

		return method.Outputs.Pack(common.Address{})
	}

	// no contract at that address
	return hexutil.Bytes{}, nil
}

func (n *fakeNode) knows(node [32]byte) bool {
	for addr := range n.names {
		if Namehash(reverseName(addr)) == node {
			return true
		}
	}

	for name := range n.forward {
		if Namehash(name) == node {
			return true
		}
	}

	return false
}

func reverseName(addr common.Address) string {
	return common.Bytes2Hex(addr.Bytes()) + ".addr.reverse"
}

func serveNode(t *testing.T, node *fakeNode) *ethclient.Client {
	t.Helper()

	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", node))

	ts := httptest.NewServer(server)

	client, err := ethclient.Dial(ts.URL)
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		ts.Close()
		server.Stop()
	})

	return client
}

type fakeClients map[uint64]*ethclient.Client

func (f fakeClients) GetClient(chainID uint64) (*ethclient.Client, error) {
	client, ok := f[chainID]
	if !ok {
		return nil, wallet.NewError(wallet.KindUnsupportedChain, "no client")
	}

	return client, nil
}

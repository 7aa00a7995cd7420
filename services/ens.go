package services

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// ENSRegistryAddress is the ENS registry on Ethereum mainnet.
var ENSRegistryAddress = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

const ensABI = `[
	{"name":"resolver","type":"function","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]},
	{"name":"name","type":"function","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"string"}]},
	{"name":"addr","type":"function","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]}
]`

var parsedENSABI = mustParseABI(ensABI)

// ENSResolver does reverse lookups (address => primary name) against the registry.
type ENSResolver struct {
	caller   ethereum.ContractCaller
	registry common.Address
}

func NewENSResolver(caller ethereum.ContractCaller) *ENSResolver {
	return &ENSResolver{caller: caller, registry: ENSRegistryAddress}
}

// LookupAddress returns the primary name of addr, or "" when it has none. The name
// is only returned if it resolves back to addr.
func (r *ENSResolver) LookupAddress(ctx context.Context, addr common.Address) (string, error) {
	reverseNode := Namehash(strings.ToLower(addr.Hex()[2:]) + ".addr.reverse")

	resolver, err := r.resolverOf(ctx, reverseNode)
	if err != nil || resolver == (common.Address{}) {
		return "", err
	}

	name, err := callString(ctx, r.caller, resolver, "name", reverseNode)
	if err != nil || name == "" {
		return "", err
	}

	forwardNode := Namehash(name)

	forwardResolver, err := r.resolverOf(ctx, forwardNode)
	if err != nil || forwardResolver == (common.Address{}) {
		return "", err
	}

	resolved, err := callAddress(ctx, r.caller, forwardResolver, "addr", forwardNode)
	if err != nil {
		return "", err
	}

	if resolved != addr {
		return "", nil
	}

	return name, nil
}

func (r *ENSResolver) resolverOf(ctx context.Context, node [32]byte) (common.Address, error) {
	return callAddress(ctx, r.caller, r.registry, "resolver", node)
}

// Namehash implements the ENS name hashing algorithm (EIP-137).
func Namehash(name string) [32]byte {
	var node [32]byte
	if name == "" {
		return node
	}

	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		copy(node[:], crypto.Keccak256(node[:], labelHash))
	}

	return node
}

func callAddress(ctx context.Context, caller ethereum.ContractCaller, to common.Address, method string, node [32]byte) (common.Address, error) {
	out, err := call(ctx, caller, to, method, node)
	if err != nil {
		return common.Address{}, err
	}

	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, errors.Errorf("unexpected %s output %T", method, out[0])
	}

	return addr, nil
}

func callString(ctx context.Context, caller ethereum.ContractCaller, to common.Address, method string, node [32]byte) (string, error) {
	out, err := call(ctx, caller, to, method, node)
	if err != nil {
		return "", err
	}

	s, ok := out[0].(string)
	if !ok {
		return "", errors.Errorf("unexpected %s output %T", method, out[0])
	}

	return s, nil
}

func call(ctx context.Context, caller ethereum.ContractCaller, to common.Address, method string, node [32]byte) ([]interface{}, error) {
	data, err := parsedENSABI.Pack(method, node)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to pack %s", method)
	}

	raw, err := caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to call %s on %s", method, to.Hex())
	}

	// a contract that is not there answers with empty data
	if len(raw) == 0 {
		return []interface{}{zeroOutput(method)}, nil
	}

	out, err := parsedENSABI.Unpack(method, raw)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to unpack %s", method)
	}

	if len(out) != 1 {
		return nil, errors.Errorf("unexpected %s output length %d", method, len(out))
	}

	return out, nil
}

func zeroOutput(method string) interface{} {
	if method == "name" {
		return ""
	}

	return common.Address{}
}

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}

	return parsed
}

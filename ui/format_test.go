package ui

import (
	"math/big"
	"testing"

	"github.com/kemsguy7/wagmi-app/services"
	"github.com/stretchr/testify/assert"
)

func TestTruncateAddress(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		expected string
	}{
		{name: "full address", address: "0x1234567890abcdef1234567890abcdef12345678", expected: "0x1234...5678"},
		{name: "short value untouched", address: "0x1234", expected: "0x1234"},
		{name: "empty", address: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateAddress(tt.address))
		})
	}
}

func TestDisplayAddress(t *testing.T) {
	const address = "0x1234567890abcdef1234567890abcdef12345678"

	assert.Equal(t, "alice.eth", DisplayAddress(address, "alice.eth"))
	assert.Equal(t, "0x1234...5678", DisplayAddress(address, ""))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		formatted string
		symbol    string
		expected  string
	}{
		{formatted: "1.23456789", symbol: "ETH", expected: "1.2346 ETH"},
		{formatted: "0", symbol: "POL", expected: "0.0000 POL"},
		{formatted: "42", symbol: "ETH", expected: "42.0000 ETH"},
		{formatted: "0.00005", symbol: "ETH", expected: "0.0001 ETH"},
		{formatted: "2.00015", symbol: "ETH", expected: "2.0002 ETH"},
		{formatted: "-0.00005", symbol: "ETH", expected: "-0.0001 ETH"},
		{formatted: "0.00004999", symbol: "ETH", expected: "0.0000 ETH"},
		{formatted: "not a number", symbol: "ETH", expected: LoadingText},
	}

	for _, tt := range tests {
		t.Run(tt.formatted, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatAmount(tt.formatted, tt.symbol))
		})
	}
}

func TestFormatBalance(t *testing.T) {
	wei, _ := new(big.Int).SetString("1234567890000000000", 10)

	tests := []struct {
		name     string
		balance  *services.Balance
		expected string
	}{
		{name: "missing", balance: nil, expected: "Loading..."},
		{name: "wei to ether", balance: &services.Balance{Value: wei, Symbol: "ETH", Decimals: 18}, expected: "1.2346 ETH"},
		{name: "zero", balance: &services.Balance{Value: big.NewInt(0), Symbol: "ETH", Decimals: 18}, expected: "0.0000 ETH"},
		{name: "exact half rounds up", balance: &services.Balance{Value: big.NewInt(50000000000000), Symbol: "ETH", Decimals: 18}, expected: "0.0001 ETH"},
		{name: "below half rounds down", balance: &services.Balance{Value: big.NewInt(49999999999999), Symbol: "ETH", Decimals: 18}, expected: "0.0000 ETH"},
		{name: "six decimals", balance: &services.Balance{Value: big.NewInt(2500000), Symbol: "USDC", Decimals: 6}, expected: "2.5000 USDC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatBalance(tt.balance))
		})
	}
}

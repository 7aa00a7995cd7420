package ui

import (
	"fmt"
	"math/big"

	"github.com/kemsguy7/wagmi-app/services"
)

// LoadingText stands in for data that has not arrived yet.
const LoadingText = "Loading..."

const balanceDecimals = 4

// TruncateAddress keeps the first 6 and last 4 characters of an address.
func TruncateAddress(address string) string {
	if len(address) <= 10 {
		return address
	}

	return address[:6] + "..." + address[len(address)-4:]
}

// DisplayAddress prefers the resolved name over the truncated address.
func DisplayAddress(address, name string) string {
	if name != "" {
		return name
	}

	return TruncateAddress(address)
}

// FormatAmount renders a decimal amount with 4 fraction digits and its symbol.
// Unparseable amounts render as the loading placeholder.
func FormatAmount(formatted, symbol string) string {
	value, ok := new(big.Rat).SetString(formatted)
	if !ok {
		return LoadingText
	}

	return formatFixed(value) + " " + symbol
}

// FormatBalance renders a balance in whole units, or the loading placeholder when
// it is not available.
func FormatBalance(balance *services.Balance) string {
	if balance == nil || balance.Value == nil {
		return LoadingText
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(balance.Decimals)), nil)

	return formatFixed(new(big.Rat).SetFrac(balance.Value, scale)) + " " + balance.Symbol
}

// formatFixed prints value with balanceDecimals fraction digits, rounding halves
// away from zero.
func formatFixed(value *big.Rat) string {
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(balanceDecimals), nil)

	num := new(big.Int).Abs(value.Num())
	num.Mul(num, unit)

	q, r := new(big.Int).QuoRem(num, value.Denom(), new(big.Int))
	if r.Lsh(r, 1).Cmp(value.Denom()) >= 0 {
		q.Add(q, big.NewInt(1))
	}

	whole, frac := new(big.Int).QuoRem(q, unit, new(big.Int))

	sign := ""
	if value.Sign() < 0 && q.Sign() != 0 {
		sign = "-"
	}

	return fmt.Sprintf("%s%s.%0*d", sign, whole.String(), balanceDecimals, frac)
}

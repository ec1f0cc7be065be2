package ledger

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimals is the number of fractional digits of one token.
const Decimals = 18

// ParseAmount converts a decimal token string ("12.5") into base units.
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	if d.IsNegative() {
		return nil, ErrInvalidAmount
	}
	units := d.Shift(Decimals)
	if !units.Equal(units.Truncate(0)) {
		return nil, ErrInvalidAmount
	}
	return units.BigInt(), nil
}

// FormatAmount renders base units as a decimal token string.
func FormatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -Decimals).String()
}

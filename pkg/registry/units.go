package registry

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ToBaseUnits scales a human amount by 10^decimals and floors the result.
// Anything below one base unit is dropped, so 0.0000001 of a 6-decimal
// token becomes 0. Negative amounts map to 0. Amounts that do not fit in
// a uint64 return ErrAmountTooLarge.
func (t TokenInfo) ToBaseUnits(amount decimal.Decimal) (uint64, error) {
	scaled := amount.Shift(int32(t.Decimals)).Floor()
	if scaled.Sign() <= 0 {
		return 0, nil
	}
	units := scaled.BigInt()
	if !units.IsUint64() {
		return 0, fmt.Errorf("%w: %s %s", ErrAmountTooLarge, amount.String(), t.Symbol)
	}
	return units.Uint64(), nil
}

// FromBaseUnits converts an integer base-unit amount back to a human amount.
func (t TokenInfo) FromBaseUnits(units uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -int32(t.Decimals))
}

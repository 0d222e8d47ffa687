package token

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// maxAmount is the largest representable token amount, 2^128 - 1. Amounts
// cross the external boundary as base-10 decimal strings to avoid precision
// loss in numeric encodings that cannot hold the full range.
var maxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// ParseAmount parses a decimal string amount and validates it against the
// unsigned 128-bit domain.
func ParseAmount(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: amount required", ErrInvalidAmount)
	}
	parsed, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	if parsed.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q must not be negative", ErrInvalidAmount, value)
	}
	if parsed.Cmp(maxAmount) > 0 {
		return nil, ErrAmountOverflow
	}
	return parsed, nil
}

// FormatAmount renders an amount as its decimal string wire form.
func FormatAmount(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}

// checkAmount guards arithmetic results against the 128-bit domain. Overflow
// is fatal for the current call, never silently truncated.
func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("token: amount out of range")
	}
	if amount.Cmp(maxAmount) > 0 {
		return ErrAmountOverflow
	}
	return nil
}

// amountToStored converts an in-memory amount to its fixed-size stored form.
func amountToStored(amount *big.Int) (*uint256.Int, error) {
	if amount == nil {
		return uint256.NewInt(0), nil
	}
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	stored, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, ErrAmountOverflow
	}
	return stored, nil
}

func amountFromStored(stored *uint256.Int) *big.Int {
	if stored == nil {
		return big.NewInt(0)
	}
	return stored.ToBig()
}

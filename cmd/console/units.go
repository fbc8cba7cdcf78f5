package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

var errTooPrecise = errors.New("more fractional digits than the token has decimals")

// parseUnits converts a human amount such as "1.5" into raw token units.
func parseUnits(s string, decimals uint8) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	whole, frac, hasPoint := strings.Cut(s, ".")
	if whole == "" && (!hasPoint || frac == "") {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("%w: %q", errTooPrecise, s)
	}
	digits := strings.TrimLeft(whole+frac+strings.Repeat("0", int(decimals)-len(frac)), "0")
	if digits == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

// formatUnits renders raw token units with the token's decimals, trimming
// trailing fractional zeros.
func formatUnits(v *uint256.Int, decimals uint8) string {
	if v == nil {
		return "-"
	}
	digits := v.Dec()
	if decimals == 0 {
		return digits
	}
	if len(digits) <= int(decimals) {
		digits = strings.Repeat("0", int(decimals)-len(digits)+1) + digits
	}
	point := len(digits) - int(decimals)
	whole, frac := digits[:point], strings.TrimRight(digits[point:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// applySlippage returns the bound a swap is submitted with: for exact supply
// the minimum target below quote, for exact target the maximum supply above it.
// Bounds are strict, so the quote itself must stay acceptable.
func applySlippage(quote *uint256.Int, bps uint64, exactSupply bool) *uint256.Int {
	scaled := new(uint256.Int)
	if exactSupply {
		if bps >= 10_000 {
			return scaled
		}
		scaled.MulDivOverflow(quote, uint256.NewInt(10_000-bps), uint256.NewInt(10_000))
		if !scaled.IsZero() && scaled.Eq(quote) {
			scaled.SubUint64(scaled, 1)
		}
		return scaled
	}
	if _, overflow := scaled.MulDivOverflow(quote, uint256.NewInt(10_000+bps), uint256.NewInt(10_000)); overflow {
		return scaled.SetAllOne()
	}
	if _, overflow := scaled.AddOverflow(scaled, uint256.NewInt(1)); overflow {
		return scaled.SetAllOne()
	}
	return scaled
}

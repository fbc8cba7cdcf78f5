package sqrtpricemath

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	// Q96 is the UQ64.96 fixed-point number representing 1.
	Q96 = new(uint256.Int).Lsh(uint256.NewInt(1), 96)
	// Resolution is the number of bits in the Q96 format.
	Resolution = uint(96)

	// MinSqrtRatio is the lowest sqrt price a pool can reach.
	MinSqrtRatio = uint256.MustFromDecimal("4295128739")
	// MaxSqrtRatio is the highest sqrt price a pool can reach (exclusive).
	MaxSqrtRatio = uint256.MustFromDecimal("1461446703485210103287273052203988822378723970342")

	ErrLiquidityZero = errors.New("liquidity must be greater than zero")
	ErrSqrtPriceZero = errors.New("sqrt price must be greater than zero")
	// ErrPriceOutOfRange is returned when a swap would push the price past the pool's reachable range
	// or an exact output exceeds what the active liquidity holds.
	ErrPriceOutOfRange = errors.New("sqrt price out of range")
	ErrOverflow        = errors.New("sqrt price math overflow")

	one = uint256.NewInt(1)
)

// mulDiv returns floor(a * b / c) using a 512-bit intermediate.
func mulDiv(a, b, c *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulDivOverflow(a, b, c)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// mulDivRoundingUp returns ceil(a * b / c).
func mulDivRoundingUp(a, b, c *uint256.Int) (*uint256.Int, error) {
	z, err := mulDiv(a, b, c)
	if err != nil {
		return nil, err
	}
	if !new(uint256.Int).MulMod(a, b, c).IsZero() {
		if _, overflow := z.AddOverflow(z, one); overflow {
			return nil, ErrOverflow
		}
	}
	return z, nil
}

// divRoundingUp returns ceil(a / b).
func divRoundingUp(a, b *uint256.Int) *uint256.Int {
	z := new(uint256.Int).Div(a, b)
	if !new(uint256.Int).Mod(a, b).IsZero() {
		z.AddUint64(z, 1)
	}
	return z
}

// GetNextSqrtPriceFromInput calculates the next sqrt price given an input amount.
func GetNextSqrtPriceFromInput(sqrtPX96, liquidity, amountIn *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	if sqrtPX96.IsZero() {
		return nil, ErrSqrtPriceZero
	}
	if liquidity.IsZero() {
		return nil, ErrLiquidityZero
	}

	if zeroForOne {
		return getNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountIn, true)
	}
	return getNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountIn, true)
}

// GetNextSqrtPriceFromOutput calculates the next sqrt price given an output amount.
func GetNextSqrtPriceFromOutput(sqrtPX96, liquidity, amountOut *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	if sqrtPX96.IsZero() {
		return nil, ErrSqrtPriceZero
	}
	if liquidity.IsZero() {
		return nil, ErrLiquidityZero
	}

	if zeroForOne {
		return getNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountOut, false)
	}
	return getNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountOut, false)
}

// GetAmount0Delta calculates the amount0 delta between two prices.
func GetAmount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *uint256.Int, roundUp bool) (*uint256.Int, error) {
	if sqrtRatioAX96.Gt(sqrtRatioBX96) {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}
	if sqrtRatioAX96.IsZero() {
		return nil, ErrSqrtPriceZero
	}

	numerator1 := new(uint256.Int).Lsh(liquidity, Resolution)
	if !new(uint256.Int).Rsh(numerator1, Resolution).Eq(liquidity) {
		return nil, ErrOverflow
	}
	numerator2 := new(uint256.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)

	if roundUp {
		term, err := mulDivRoundingUp(numerator1, numerator2, sqrtRatioBX96)
		if err != nil {
			return nil, err
		}
		return divRoundingUp(term, sqrtRatioAX96), nil
	}
	term, err := mulDiv(numerator1, numerator2, sqrtRatioBX96)
	if err != nil {
		return nil, err
	}
	return term.Div(term, sqrtRatioAX96), nil
}

// GetAmount1Delta calculates the amount1 delta between two prices.
func GetAmount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *uint256.Int, roundUp bool) (*uint256.Int, error) {
	if sqrtRatioAX96.Gt(sqrtRatioBX96) {
		sqrtRatioAX96, sqrtRatioBX96 = sqrtRatioBX96, sqrtRatioAX96
	}

	diff := new(uint256.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)
	if roundUp {
		return mulDivRoundingUp(liquidity, diff, Q96)
	}
	return mulDiv(liquidity, diff, Q96)
}

func getNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amount *uint256.Int, add bool) (*uint256.Int, error) {
	if amount.IsZero() {
		return sqrtPX96.Clone(), nil
	}

	numerator1 := new(uint256.Int).Lsh(liquidity, Resolution)
	if !new(uint256.Int).Rsh(numerator1, Resolution).Eq(liquidity) {
		return nil, ErrOverflow
	}

	product, overflow := new(uint256.Int).MulOverflow(amount, sqrtPX96)
	if add {
		if !overflow {
			denominator, overflow := new(uint256.Int).AddOverflow(numerator1, product)
			if !overflow {
				return mulDivRoundingUp(numerator1, sqrtPX96, denominator)
			}
		}
		// liquidity / (liquidity / sqrtP + amount)
		denominator, overflow := new(uint256.Int).AddOverflow(new(uint256.Int).Div(numerator1, sqrtPX96), amount)
		if overflow {
			return nil, ErrOverflow
		}
		return divRoundingUp(numerator1, denominator), nil
	}

	if overflow || !numerator1.Gt(product) {
		return nil, ErrPriceOutOfRange
	}
	denominator := new(uint256.Int).Sub(numerator1, product)
	return mulDivRoundingUp(numerator1, sqrtPX96, denominator)
}

func getNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amount *uint256.Int, add bool) (*uint256.Int, error) {
	if add {
		quotient, err := mulDiv(amount, Q96, liquidity)
		if err != nil {
			return nil, err
		}
		next, overflow := new(uint256.Int).AddOverflow(sqrtPX96, quotient)
		if overflow {
			return nil, ErrOverflow
		}
		return next, nil
	}

	quotient, err := mulDivRoundingUp(amount, Q96, liquidity)
	if err != nil {
		return nil, err
	}
	if !sqrtPX96.Gt(quotient) {
		return nil, ErrPriceOutOfRange
	}
	return new(uint256.Int).Sub(sqrtPX96, quotient), nil
}

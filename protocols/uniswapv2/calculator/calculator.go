package uniswapv2

import (
	"errors"
	"fmt"

	uniswapv2 "github.com/defistate/defistate-aggregator-go/protocols/uniswapv2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	// basisPointDivisor is a constant representing 100% in basis points (10000).
	basisPointDivisor = uint256.NewInt(10000)

	one = uint256.NewInt(1)

	// ErrNilAmount is returned when a nil pointer is passed for an amount.
	ErrNilAmount = errors.New("nil pointer passed as amount")
	// ErrTokenMismatch is returned when the specified input/output tokens do not match the pool's tokens.
	ErrTokenMismatch = errors.New("token mismatch")
	// ErrInvalidState is returned for pools that cannot be priced, like a fee of 100% or more.
	ErrInvalidState = errors.New("invalid internal state")
	// ErrInsufficientLiquidity is returned when a reserve is empty or an amountOut is requested
	// that is greater than or equal to the available reserve.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity for swap")
	// ErrOverflow is returned when an intermediate or final value does not fit in 256 bits.
	ErrOverflow = errors.New("arithmetic overflow")
)

// GetAmountOut calculates the output amount for an exact input amount, net of the pool fee.
func GetAmountOut(
	amountIn *uint256.Int,
	tokenIn common.Address,
	tokenOut common.Address,
	pool uniswapv2.Pool,
) (*uint256.Int, error) {
	if amountIn == nil {
		return nil, ErrNilAmount
	}

	reserveIn, reserveOut, err := GetReserves(tokenIn, tokenOut, pool)
	if err != nil {
		return nil, err
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, fmt.Errorf("%w: pool %d has an empty reserve", ErrInsufficientLiquidity, pool.ID)
	}

	feeMultiplier, err := feeMultiplier(pool)
	if err != nil {
		return nil, err
	}

	amountInWithFee, overflow := new(uint256.Int).MulOverflow(amountIn, feeMultiplier)
	if overflow {
		return nil, fmt.Errorf("%w: amountIn * feeMultiplier", ErrOverflow)
	}
	denominator, overflow := new(uint256.Int).MulOverflow(reserveIn, basisPointDivisor)
	if overflow {
		return nil, fmt.Errorf("%w: reserveIn * 10000", ErrOverflow)
	}
	if _, overflow = denominator.AddOverflow(denominator, amountInWithFee); overflow {
		return nil, fmt.Errorf("%w: swap denominator", ErrOverflow)
	}

	// amountOut = reserveOut * amountInWithFee / (reserveIn * 10000 + amountInWithFee)
	amountOut, overflow := new(uint256.Int).MulDivOverflow(reserveOut, amountInWithFee, denominator)
	if overflow {
		return nil, fmt.Errorf("%w: amountOut", ErrOverflow)
	}
	return amountOut, nil
}

// GetAmountIn calculates the input amount required to receive exactly amountOut.
func GetAmountIn(
	amountOut *uint256.Int,
	tokenIn common.Address,
	tokenOut common.Address,
	pool uniswapv2.Pool,
) (*uint256.Int, error) {
	if amountOut == nil {
		return nil, ErrNilAmount
	}

	reserveIn, reserveOut, err := GetReserves(tokenIn, tokenOut, pool)
	if err != nil {
		return nil, err
	}
	if reserveIn.IsZero() || reserveOut.IsZero() || !amountOut.Lt(reserveOut) {
		return nil, fmt.Errorf("%w: requested amountOut (%s) is >= reserveOut (%s)", ErrInsufficientLiquidity, amountOut.Dec(), reserveOut.Dec())
	}

	feeMultiplier, err := feeMultiplier(pool)
	if err != nil {
		return nil, err
	}

	scaledOut, overflow := new(uint256.Int).MulOverflow(amountOut, basisPointDivisor)
	if overflow {
		return nil, fmt.Errorf("%w: amountOut * 10000", ErrOverflow)
	}
	denominator, overflow := new(uint256.Int).MulOverflow(new(uint256.Int).Sub(reserveOut, amountOut), feeMultiplier)
	if overflow {
		return nil, fmt.Errorf("%w: (reserveOut - amountOut) * feeMultiplier", ErrOverflow)
	}

	// amountIn = reserveIn * amountOut * 10000 / ((reserveOut - amountOut) * (10000 - fee)) + 1
	amountIn, overflow := new(uint256.Int).MulDivOverflow(reserveIn, scaledOut, denominator)
	if overflow {
		return nil, fmt.Errorf("%w: amountIn", ErrOverflow)
	}
	if _, overflow = amountIn.AddOverflow(amountIn, one); overflow {
		return nil, fmt.Errorf("%w: amountIn", ErrOverflow)
	}
	return amountIn, nil
}

// SimulateSwap returns the output of an exact-input swap and the pool state after it.
// The input pool is never mutated.
func SimulateSwap(
	amountIn *uint256.Int,
	tokenIn common.Address,
	tokenOut common.Address,
	pool uniswapv2.Pool,
) (*uint256.Int, uniswapv2.Pool, error) {
	amountOut, err := GetAmountOut(amountIn, tokenIn, tokenOut, pool)
	if err != nil {
		return nil, uniswapv2.Pool{}, err
	}
	newPool, err := applySwap(amountIn, amountOut, tokenIn, pool)
	if err != nil {
		return nil, uniswapv2.Pool{}, err
	}
	return amountOut, newPool, nil
}

// SimulateSwapExactOut returns the input required by an exact-output swap and the pool state after it.
func SimulateSwapExactOut(
	amountOut *uint256.Int,
	tokenIn common.Address,
	tokenOut common.Address,
	pool uniswapv2.Pool,
) (*uint256.Int, uniswapv2.Pool, error) {
	amountIn, err := GetAmountIn(amountOut, tokenIn, tokenOut, pool)
	if err != nil {
		return nil, uniswapv2.Pool{}, err
	}
	newPool, err := applySwap(amountIn, amountOut, tokenIn, pool)
	if err != nil {
		return nil, uniswapv2.Pool{}, err
	}
	return amountIn, newPool, nil
}

// applySwap credits the full input (fee included) to the input reserve and debits the output reserve.
func applySwap(amountIn, amountOut *uint256.Int, tokenIn common.Address, pool uniswapv2.Pool) (uniswapv2.Pool, error) {
	newPoolState := pool.Clone()

	reserveIn, reserveOut := newPoolState.Reserve0, newPoolState.Reserve1
	if tokenIn == pool.Token1 {
		reserveIn, reserveOut = newPoolState.Reserve1, newPoolState.Reserve0
	}

	if _, overflow := reserveIn.AddOverflow(reserveIn, amountIn); overflow {
		return uniswapv2.Pool{}, fmt.Errorf("%w: reserveIn + amountIn", ErrOverflow)
	}
	if _, underflow := reserveOut.SubOverflow(reserveOut, amountOut); underflow {
		return uniswapv2.Pool{}, fmt.Errorf("%w: amountOut exceeds reserveOut", ErrInsufficientLiquidity)
	}
	return newPoolState, nil
}

// GetReserves returns the reserves for the given token pair. For V2, this is a direct lookup.
func GetReserves(tokenIn, tokenOut common.Address, pool uniswapv2.Pool) (reserveIn, reserveOut *uint256.Int, err error) {
	if tokenIn == pool.Token0 && tokenOut == pool.Token1 {
		return pool.Reserve0, pool.Reserve1, nil
	} else if tokenIn == pool.Token1 && tokenOut == pool.Token0 {
		return pool.Reserve1, pool.Reserve0, nil
	}
	return nil, nil, fmt.Errorf("%w: pool %d does not contain the pair %s -> %s", ErrTokenMismatch, pool.ID, tokenIn.Hex(), tokenOut.Hex())
}

func feeMultiplier(pool uniswapv2.Pool) (*uint256.Int, error) {
	fee := uint256.NewInt(uint64(pool.FeeBps))
	if !fee.Lt(basisPointDivisor) {
		return nil, fmt.Errorf("%w: pool %d fee %d bps", ErrInvalidState, pool.ID, pool.FeeBps)
	}
	return new(uint256.Int).Sub(basisPointDivisor, fee), nil
}

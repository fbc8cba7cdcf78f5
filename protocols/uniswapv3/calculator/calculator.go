package uniswapv3

import (
	"errors"
	"fmt"

	uniswapv3 "github.com/defistate/defistate-aggregator-go/protocols/uniswapv3"
	"github.com/defistate/defistate-aggregator-go/protocols/uniswapv3/calculator/sqrtpricemath"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ErrNilAmount     = errors.New("nil pointer passed as amount")
	ErrTokenMismatch = errors.New("token mismatch")
	// ErrInvalidState is returned for pools that cannot be priced: no liquidity, a fee of 100% or more,
	// or a price outside the reachable range.
	ErrInvalidState = errors.New("invalid internal state")
	// ErrInsufficientLiquidity is returned when a swap would move the price out of the active range.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity for swap")
	ErrOverflow              = errors.New("arithmetic overflow")

	// feeDivisor is 100% expressed in hundredths of a bip.
	feeDivisor = uint256.NewInt(1_000_000)
)

type swapResult struct {
	amountIn     *uint256.Int
	amountOut    *uint256.Int
	sqrtPriceX96 *uint256.Int
}

func zeroForOne(tokenIn, tokenOut common.Address, pool uniswapv3.Pool) (bool, error) {
	if tokenIn == pool.Token0 && tokenOut == pool.Token1 {
		return true, nil
	}
	if tokenIn == pool.Token1 && tokenOut == pool.Token0 {
		return false, nil
	}
	return false, fmt.Errorf("%w: pool %d does not contain the pair %s -> %s", ErrTokenMismatch, pool.ID, tokenIn.Hex(), tokenOut.Hex())
}

func validate(pool uniswapv3.Pool) error {
	if pool.Liquidity == nil || pool.SqrtPriceX96 == nil || pool.Liquidity.IsZero() {
		return fmt.Errorf("%w: pool %d has no active liquidity", ErrInvalidState, pool.ID)
	}
	if pool.SqrtPriceX96.Lt(sqrtpricemath.MinSqrtRatio) || !pool.SqrtPriceX96.Lt(sqrtpricemath.MaxSqrtRatio) {
		return fmt.Errorf("%w: pool %d sqrt price %s", ErrInvalidState, pool.ID, pool.SqrtPriceX96.Dec())
	}
	if uint64(pool.Fee) >= feeDivisor.Uint64() {
		return fmt.Errorf("%w: pool %d fee %d", ErrInvalidState, pool.ID, pool.Fee)
	}
	return nil
}

// mapErr folds sqrt price math failures into this package's error taxonomy.
func mapErr(err error) error {
	switch {
	case errors.Is(err, sqrtpricemath.ErrPriceOutOfRange):
		return fmt.Errorf("%w: %v", ErrInsufficientLiquidity, err)
	case errors.Is(err, sqrtpricemath.ErrOverflow):
		return fmt.Errorf("%w: %v", ErrOverflow, err)
	}
	return fmt.Errorf("%w: %v", ErrInvalidState, err)
}

func checkRange(sqrtPriceX96 *uint256.Int) error {
	if sqrtPriceX96.Lt(sqrtpricemath.MinSqrtRatio) || !sqrtPriceX96.Lt(sqrtpricemath.MaxSqrtRatio) {
		return fmt.Errorf("%w: price limit reached", ErrInsufficientLiquidity)
	}
	return nil
}

// exactIn prices an exact input within the active range. The fee is taken from the input.
func exactIn(amountIn *uint256.Int, tokenIn, tokenOut common.Address, pool uniswapv3.Pool) (swapResult, error) {
	if amountIn == nil {
		return swapResult{}, ErrNilAmount
	}
	z4o, err := zeroForOne(tokenIn, tokenOut, pool)
	if err != nil {
		return swapResult{}, err
	}
	if err := validate(pool); err != nil {
		return swapResult{}, err
	}

	feeComplement := new(uint256.Int).Sub(feeDivisor, uint256.NewInt(uint64(pool.Fee)))
	amountInLessFee, overflow := new(uint256.Int).MulDivOverflow(amountIn, feeComplement, feeDivisor)
	if overflow {
		return swapResult{}, fmt.Errorf("%w: amountIn less fee", ErrOverflow)
	}

	next, err := sqrtpricemath.GetNextSqrtPriceFromInput(pool.SqrtPriceX96, pool.Liquidity, amountInLessFee, z4o)
	if err != nil {
		return swapResult{}, mapErr(err)
	}
	if err := checkRange(next); err != nil {
		return swapResult{}, err
	}

	var amountOut *uint256.Int
	if z4o {
		amountOut, err = sqrtpricemath.GetAmount1Delta(next, pool.SqrtPriceX96, pool.Liquidity, false)
	} else {
		amountOut, err = sqrtpricemath.GetAmount0Delta(pool.SqrtPriceX96, next, pool.Liquidity, false)
	}
	if err != nil {
		return swapResult{}, mapErr(err)
	}
	return swapResult{amountIn: amountIn.Clone(), amountOut: amountOut, sqrtPriceX96: next}, nil
}

// exactOut prices an exact output within the active range, grossing the required input up by the fee.
func exactOut(amountOut *uint256.Int, tokenIn, tokenOut common.Address, pool uniswapv3.Pool) (swapResult, error) {
	if amountOut == nil {
		return swapResult{}, ErrNilAmount
	}
	z4o, err := zeroForOne(tokenIn, tokenOut, pool)
	if err != nil {
		return swapResult{}, err
	}
	if err := validate(pool); err != nil {
		return swapResult{}, err
	}

	next, err := sqrtpricemath.GetNextSqrtPriceFromOutput(pool.SqrtPriceX96, pool.Liquidity, amountOut, z4o)
	if err != nil {
		return swapResult{}, mapErr(err)
	}
	if err := checkRange(next); err != nil {
		return swapResult{}, err
	}

	var amountInLessFee *uint256.Int
	if z4o {
		amountInLessFee, err = sqrtpricemath.GetAmount0Delta(next, pool.SqrtPriceX96, pool.Liquidity, true)
	} else {
		amountInLessFee, err = sqrtpricemath.GetAmount1Delta(pool.SqrtPriceX96, next, pool.Liquidity, true)
	}
	if err != nil {
		return swapResult{}, mapErr(err)
	}

	// amountIn = ceil(amountInLessFee * 1e6 / (1e6 - fee))
	feeComplement := new(uint256.Int).Sub(feeDivisor, uint256.NewInt(uint64(pool.Fee)))
	amountIn, overflow := new(uint256.Int).MulDivOverflow(amountInLessFee, feeDivisor, feeComplement)
	if overflow {
		return swapResult{}, fmt.Errorf("%w: amountIn", ErrOverflow)
	}
	if !new(uint256.Int).MulMod(amountInLessFee, feeDivisor, feeComplement).IsZero() {
		if _, overflow := amountIn.AddOverflow(amountIn, uint256.NewInt(1)); overflow {
			return swapResult{}, fmt.Errorf("%w: amountIn", ErrOverflow)
		}
	}
	return swapResult{amountIn: amountIn, amountOut: amountOut.Clone(), sqrtPriceX96: next}, nil
}

// GetAmountOut calculates the amount out for a given exact amount in.
func GetAmountOut(amountIn *uint256.Int, tokenIn, tokenOut common.Address, pool uniswapv3.Pool) (*uint256.Int, error) {
	res, err := exactIn(amountIn, tokenIn, tokenOut, pool)
	if err != nil {
		return nil, err
	}
	return res.amountOut, nil
}

// GetAmountIn calculates the required amount in for a given exact amount out.
func GetAmountIn(amountOut *uint256.Int, tokenIn, tokenOut common.Address, pool uniswapv3.Pool) (*uint256.Int, error) {
	res, err := exactOut(amountOut, tokenIn, tokenOut, pool)
	if err != nil {
		return nil, err
	}
	return res.amountIn, nil
}

// SimulateSwap calculates the resulting amount out and the new pool state for a given amount in.
func SimulateSwap(amountIn *uint256.Int, tokenIn, tokenOut common.Address, pool uniswapv3.Pool) (*uint256.Int, uniswapv3.Pool, error) {
	res, err := exactIn(amountIn, tokenIn, tokenOut, pool)
	if err != nil {
		return nil, uniswapv3.Pool{}, err
	}
	newPoolState := pool.Clone()
	newPoolState.SqrtPriceX96 = res.sqrtPriceX96
	return res.amountOut, newPoolState, nil
}

// SimulateSwapExactOut calculates the required amount in and the new pool state for a given amount out.
func SimulateSwapExactOut(amountOut *uint256.Int, tokenIn, tokenOut common.Address, pool uniswapv3.Pool) (*uint256.Int, uniswapv3.Pool, error) {
	res, err := exactOut(amountOut, tokenIn, tokenOut, pool)
	if err != nil {
		return nil, uniswapv3.Pool{}, err
	}
	newPoolState := pool.Clone()
	newPoolState.SqrtPriceX96 = res.sqrtPriceX96
	return res.amountIn, newPoolState, nil
}

// GetVirtualReserves calculates the virtual reserves of a Uniswap V3 pool based on its
// current liquidity and price.
func GetVirtualReserves(tokenIn, tokenOut common.Address, pool uniswapv3.Pool) (reserveIn, reserveOut *uint256.Int, err error) {
	z4o, err := zeroForOne(tokenIn, tokenOut, pool)
	if err != nil {
		return nil, nil, err
	}
	if err := validate(pool); err != nil {
		return nil, nil, err
	}

	reserve0, overflow := new(uint256.Int).MulDivOverflow(pool.Liquidity, sqrtpricemath.Q96, pool.SqrtPriceX96)
	if overflow {
		return nil, nil, fmt.Errorf("%w: reserve0", ErrOverflow)
	}
	reserve1, overflow := new(uint256.Int).MulDivOverflow(pool.Liquidity, pool.SqrtPriceX96, sqrtpricemath.Q96)
	if overflow {
		return nil, nil, fmt.Errorf("%w: reserve1", ErrOverflow)
	}

	if z4o {
		return reserve0, reserve1, nil
	}
	return reserve1, reserve0, nil
}

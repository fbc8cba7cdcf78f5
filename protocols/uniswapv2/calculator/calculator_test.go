package uniswapv2

import (
	"reflect"
	"testing"

	uniswapv2 "github.com/defistate/defistate-aggregator-go/protocols/uniswapv2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	usdc = common.HexToAddress("0x01")
	weth = common.HexToAddress("0x02")
)

func usdcWethPool(feeBps uint16) uniswapv2.Pool {
	return uniswapv2.Pool{
		ID:       1,
		Token0:   usdc,
		Token1:   weth,
		Reserve0: uint256.NewInt(100_000_000),                   // 100 USDC
		Reserve1: uint256.MustFromDecimal("50000000000000000000"), // 50 WETH (18 decimals)
		FeeBps:   feeBps,
	}
}

func TestGetAmountOut(t *testing.T) {
	testCases := []struct {
		name           string
		amountIn       *uint256.Int
		tokenIn        common.Address
		tokenOut       common.Address
		pool           uniswapv2.Pool
		expectedAmount *uint256.Int
		expectedErr    error
	}{
		{
			name:           "Standard Swap (Token0 -> Token1)",
			amountIn:       uint256.NewInt(1_000_000),
			tokenIn:        usdc,
			tokenOut:       weth,
			pool:           usdcWethPool(30),
			expectedAmount: uint256.MustFromDecimal("493579017198530649"),
		},
		{
			name:           "Standard Swap (Token1 -> Token0)",
			amountIn:       uint256.MustFromDecimal("1000000000000000000"),
			tokenIn:        weth,
			tokenOut:       usdc,
			pool:           usdcWethPool(30),
			expectedAmount: uint256.NewInt(1955016),
		},
		{
			name:           "Swap with Different Fee",
			amountIn:       uint256.NewInt(1_000_000),
			tokenIn:        usdc,
			tokenOut:       weth,
			pool:           usdcWethPool(100),
			expectedAmount: uint256.MustFromDecimal("490147539360332706"),
		},
		{
			name:           "Zero Input Yields Zero Output",
			amountIn:       uint256.NewInt(0),
			tokenIn:        usdc,
			tokenOut:       weth,
			pool:           usdcWethPool(30),
			expectedAmount: uint256.NewInt(0),
		},
		{
			name:     "Edge Case: Zero Liquidity",
			amountIn: uint256.NewInt(1_000_000),
			tokenIn:  usdc,
			tokenOut: weth,
			pool: uniswapv2.Pool{
				ID:       3,
				Token0:   usdc,
				Token1:   weth,
				Reserve0: uint256.NewInt(0),
				Reserve1: uint256.MustFromDecimal("50000000000000000000"),
				FeeBps:   30,
			},
			expectedErr: ErrInsufficientLiquidity,
		},
		{
			name:        "Invalid Input: Nil AmountIn",
			amountIn:    nil,
			tokenIn:     usdc,
			tokenOut:    weth,
			pool:        usdcWethPool(30),
			expectedErr: ErrNilAmount,
		},
		{
			name:        "Invalid Input: Token Mismatch",
			amountIn:    uint256.NewInt(1_000_000),
			tokenIn:     common.HexToAddress("0x99"),
			tokenOut:    weth,
			pool:        usdcWethPool(30),
			expectedErr: ErrTokenMismatch,
		},
		{
			name:        "Invalid State: Fee Of 100 Percent",
			amountIn:    uint256.NewInt(1_000_000),
			tokenIn:     usdc,
			tokenOut:    weth,
			pool:        usdcWethPool(10000),
			expectedErr: ErrInvalidState,
		},
		{
			name:        "Overflow: Input Too Large",
			amountIn:    new(uint256.Int).SetAllOne(),
			tokenIn:     usdc,
			tokenOut:    weth,
			pool:        usdcWethPool(30),
			expectedErr: ErrOverflow,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			amountOut, err := GetAmountOut(tc.amountIn, tc.tokenIn, tc.tokenOut, tc.pool)

			if tc.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, amountOut)
			assert.Equal(t, tc.expectedAmount.Dec(), amountOut.Dec())
		})
	}
}

func TestGetAmountIn(t *testing.T) {
	testCases := []struct {
		name           string
		amountOut      *uint256.Int
		tokenIn        common.Address
		tokenOut       common.Address
		pool           uniswapv2.Pool
		expectedAmount *uint256.Int
		expectedErr    error
	}{
		{
			name:           "Standard Swap (Token0 -> Token1)",
			amountOut:      uint256.MustFromDecimal("493579017198530649"),
			tokenIn:        usdc,
			tokenOut:       weth,
			pool:           usdcWethPool(30),
			expectedAmount: uint256.NewInt(1000000),
		},
		{
			name:           "Standard Swap (Token1 -> Token0)",
			amountOut:      uint256.NewInt(1955016),
			tokenIn:        weth,
			tokenOut:       usdc,
			pool:           usdcWethPool(30),
			expectedAmount: uint256.MustFromDecimal("999999498234537320"),
		},
		{
			name:        "Invalid Input: Nil AmountOut",
			amountOut:   nil,
			pool:        usdcWethPool(30),
			expectedErr: ErrNilAmount,
		},
		{
			name:        "Invalid State: Insufficient Liquidity",
			amountOut:   uint256.MustFromDecimal("60000000000000000000"),
			tokenIn:     usdc,
			tokenOut:    weth,
			pool:        usdcWethPool(30),
			expectedErr: ErrInsufficientLiquidity,
		},
		{
			name:        "Invalid State: Exactly The Reserve",
			amountOut:   uint256.MustFromDecimal("50000000000000000000"),
			tokenIn:     usdc,
			tokenOut:    weth,
			pool:        usdcWethPool(30),
			expectedErr: ErrInsufficientLiquidity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			amountIn, err := GetAmountIn(tc.amountOut, tc.tokenIn, tc.tokenOut, tc.pool)

			if tc.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, amountIn)
			assert.Equal(t, tc.expectedAmount.Dec(), amountIn.Dec())
		})
	}
}

// TestGetAmountInCoversAmountOut checks that the inverse quote always buys at least the requested output.
func TestGetAmountInCoversAmountOut(t *testing.T) {
	pool := usdcWethPool(30)
	for _, out := range []uint64{1, 7, 1_000, 123_456_789, 1_000_000_000_000} {
		amountOut := uint256.NewInt(out)
		amountIn, err := GetAmountIn(amountOut, usdc, weth, pool)
		require.NoError(t, err)

		realized, err := GetAmountOut(amountIn, usdc, weth, pool)
		require.NoError(t, err)
		assert.False(t, realized.Lt(amountOut), "out=%d in=%s realized=%s", out, amountIn.Dec(), realized.Dec())
	}
}

func TestSimulateSwap(t *testing.T) {
	pool := usdcWethPool(30)
	amountIn := uint256.NewInt(1_000_000)

	amountOut, newPool, err := SimulateSwap(amountIn, usdc, weth, pool)
	require.NoError(t, err)

	assert.Equal(t, "493579017198530649", amountOut.Dec())
	assert.Equal(t, new(uint256.Int).Add(pool.Reserve0, amountIn).Dec(), newPool.Reserve0.Dec())
	assert.Equal(t, new(uint256.Int).Sub(pool.Reserve1, amountOut).Dec(), newPool.Reserve1.Dec())
}

func TestSimulateSwapExactOut(t *testing.T) {
	pool := usdcWethPool(30)
	amountOut := uint256.NewInt(1955016)

	amountIn, newPool, err := SimulateSwapExactOut(amountOut, weth, usdc, pool)
	require.NoError(t, err)

	assert.Equal(t, "999999498234537320", amountIn.Dec())
	assert.Equal(t, new(uint256.Int).Sub(pool.Reserve0, amountOut).Dec(), newPool.Reserve0.Dec())
	assert.Equal(t, new(uint256.Int).Add(pool.Reserve1, amountIn).Dec(), newPool.Reserve1.Dec())
	assert.Equal(t, "100000000", pool.Reserve0.Dec(), "input pool must not be mutated")
}

// TestSimulateSwap_IdempotencyAndStateIsolation verifies that the simulation
// function does not mutate its inputs and that the returned new state is a
// proper deep copy of its mutable fields, preventing side effects.
func TestSimulateSwap_IdempotencyAndStateIsolation(t *testing.T) {
	originalPool := usdcWethPool(30)
	amountIn := uint256.NewInt(1_000_000)

	amountOut1, newPoolState1, err1 := SimulateSwap(amountIn, usdc, weth, originalPool)
	require.NoError(t, err1)
	amountOut2, newPoolState2, err2 := SimulateSwap(amountIn, usdc, weth, originalPool)
	require.NoError(t, err2)

	t.Run("Idempotency Check", func(t *testing.T) {
		assert.Equal(t, amountOut1.Dec(), amountOut2.Dec())
		assert.True(t, reflect.DeepEqual(newPoolState1, newPoolState2))
	})

	t.Run("Deep Copy Check (Reserves)", func(t *testing.T) {
		assert.NotSame(t, originalPool.Reserve0, newPoolState1.Reserve0)
		assert.NotSame(t, originalPool.Reserve1, newPoolState1.Reserve1)
	})

	t.Run("Result Isolation Check", func(t *testing.T) {
		originalReserve2 := newPoolState2.Reserve0.Clone()
		newPoolState1.Reserve0.Add(newPoolState1.Reserve0, uint256.NewInt(12345))

		assert.NotEqual(t, newPoolState1.Reserve0.Dec(), newPoolState2.Reserve0.Dec())
		assert.Equal(t, originalReserve2.Dec(), newPoolState2.Reserve0.Dec())
	})
}

// result is a package-level variable to ensure the compiler does not optimize away the benchmarked function call.
var result *uint256.Int

func BenchmarkGetAmountOut(b *testing.B) {
	pool := uniswapv2.Pool{
		ID:       1,
		Token0:   usdc,
		Token1:   weth,
		Reserve0: uint256.MustFromDecimal("2000000000000"),          // 2,000,000 USDC
		Reserve1: uint256.MustFromDecimal("1000000000000000000000"), // 1,000 WETH
		FeeBps:   30,
	}
	amountIn := uint256.MustFromDecimal("1000000000000000000") // 1 WETH

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		amountOut, _ := GetAmountOut(amountIn, weth, usdc, pool)
		result = amountOut
	}
}

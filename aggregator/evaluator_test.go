package aggregator

import (
	"testing"

	"github.com/defistate/defistate-aggregator-go/engine"
	v2calc "github.com/defistate/defistate-aggregator-go/protocols/uniswapv2/calculator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateExactSupply(t *testing.T) {
	m := newMarket()
	ab := m.add(t, engine.UniswapV2, tokenA, tokenB, 1_000_000, 2_000_000)
	bc := m.add(t, engine.UniswapV2, tokenB, tokenC, 1_000_000, 2_000_000)

	t.Run("Single Hop Matches The Oracle", func(t *testing.T) {
		for _, hop := range []engine.AvailablePool{ab, ab.Swap(), bc, bc.Swap()} {
			direct, err := m.GetTargetAmount(hop, u(1000))
			require.NoError(t, err)
			got, err := EvaluateExactSupply(m, Path{hop}, u(1000))
			require.NoError(t, err)
			assert.Equal(t, direct, got, hop.String())
		}
	})

	t.Run("Chains Outputs Into Inputs", func(t *testing.T) {
		got, err := EvaluateExactSupply(m, Path{ab, bc}, u(1000))
		require.NoError(t, err)
		assert.Equal(t, u(3964), got)
	})

	t.Run("Broken Path", func(t *testing.T) {
		_, err := EvaluateExactSupply(m, Path{ab, bc.Swap()}, u(1000))
		assert.ErrorIs(t, err, ErrBrokenPath)
	})

	t.Run("Empty Path", func(t *testing.T) {
		_, err := EvaluateExactSupply(m, nil, u(1000))
		assert.ErrorIs(t, err, ErrEmptyPath)
	})

	t.Run("Nil Amount", func(t *testing.T) {
		_, err := EvaluateExactSupply(m, Path{ab}, nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestEvaluateExactTarget(t *testing.T) {
	m := newMarket()
	ab := m.add(t, engine.UniswapV2, tokenA, tokenB, 1_000_000, 2_000_000)
	bc := m.add(t, engine.UniswapV2, tokenB, tokenC, 1_000_000, 2_000_000)

	t.Run("Single Hop Matches The Oracle", func(t *testing.T) {
		for _, hop := range []engine.AvailablePool{ab, ab.Swap(), bc, bc.Swap()} {
			direct, err := m.GetSupplyAmount(hop, u(1000))
			require.NoError(t, err)
			got, err := EvaluateExactTarget(m, Path{hop}, u(1000))
			require.NoError(t, err)
			assert.Equal(t, direct, got, hop.String())
		}
	})

	t.Run("Walks Backwards From The Last Hop", func(t *testing.T) {
		got, err := EvaluateExactTarget(m, Path{ab, bc}, u(1000))
		require.NoError(t, err)
		assert.Equal(t, u(252), got)
	})

	t.Run("Target Beyond Reserves Fails The Whole Path", func(t *testing.T) {
		_, err := EvaluateExactTarget(m, Path{ab, bc}, u(2_000_000))
		assert.ErrorIs(t, err, v2calc.ErrInsufficientLiquidity)
	})

	t.Run("Broken Path", func(t *testing.T) {
		_, err := EvaluateExactTarget(m, Path{ab.Swap(), bc}, u(1000))
		assert.ErrorIs(t, err, ErrBrokenPath)
	})

	t.Run("Empty Path", func(t *testing.T) {
		_, err := EvaluateExactTarget(m, Path{}, u(1000))
		assert.ErrorIs(t, err, ErrEmptyPath)
	})
}

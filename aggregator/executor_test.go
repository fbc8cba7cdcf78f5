package aggregator

import (
	"testing"

	"github.com/defistate/defistate-aggregator-go/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteExactSupply(t *testing.T) {
	setup := func(t *testing.T) (*market, Path) {
		m := newMarket()
		ab := m.add(t, engine.UniswapV2, tokenA, tokenB, 1_000_000, 2_000_000)
		bc := m.add(t, engine.UniswapV2, tokenB, tokenC, 1_000_000, 2_000_000)
		return m, Path{ab, bc}
	}

	t.Run("Only The Last Hop Is Bounded", func(t *testing.T) {
		m, path := setup(t)
		exec := newRecordingExecutor(m)

		res, err := ExecuteExactSupply(exec, trader, path, u(1000), u(3900))
		require.NoError(t, err)
		assert.Equal(t, u(1000), res.SupplyAmount)
		assert.Equal(t, u(3964), res.TargetAmount)

		require.Len(t, exec.calls, 2)
		assert.Equal(t, path[0], exec.calls[0].pool)
		assert.Equal(t, u(1000), exec.calls[0].amount)
		assert.True(t, exec.calls[0].bound.IsZero())
		assert.Equal(t, path[1], exec.calls[1].pool)
		assert.Equal(t, u(1992), exec.calls[1].amount)
		assert.Equal(t, u(3900), exec.calls[1].bound)
	})

	t.Run("Hop Failure Stops Execution", func(t *testing.T) {
		m, path := setup(t)
		exec := newRecordingExecutor(m)
		exec.failAt = 0

		_, err := ExecuteExactSupply(exec, trader, path, u(1000), u(0))
		assert.ErrorIs(t, err, errHopFailed)
		assert.Len(t, exec.calls, 1)
	})

	t.Run("Final Bound Is Enforced By The Last Hop", func(t *testing.T) {
		m, path := setup(t)
		exec := newRecordingExecutor(m)

		_, err := ExecuteExactSupply(exec, trader, path, u(1000), u(3965))
		assert.ErrorIs(t, err, errHopFailed)
		assert.Len(t, exec.calls, 2)
	})

	t.Run("Rejects Malformed Paths", func(t *testing.T) {
		m, path := setup(t)
		exec := newRecordingExecutor(m)

		_, err := ExecuteExactSupply(exec, trader, nil, u(1000), u(0))
		assert.ErrorIs(t, err, ErrEmptyPath)
		_, err = ExecuteExactSupply(exec, trader, Path{path[1], path[0]}, u(1000), u(0))
		assert.ErrorIs(t, err, ErrBrokenPath)
		assert.Empty(t, exec.calls)
	})
}

func TestExecuteExactTarget(t *testing.T) {
	setup := func(t *testing.T) (*market, Path) {
		m := newMarket()
		ab := m.add(t, engine.UniswapV2, tokenA, tokenB, 1_000_000, 2_000_000)
		bc := m.add(t, engine.UniswapV2, tokenB, tokenC, 1_000_000, 2_000_000)
		return m, Path{ab, bc}
	}

	t.Run("Supplies The Estimate And Buys The Exact Target", func(t *testing.T) {
		m, path := setup(t)
		exec := newRecordingExecutor(m)

		res, err := ExecuteExactTarget(exec, m, trader, path, u(1000), u(300))
		require.NoError(t, err)
		assert.Equal(t, u(252), res.SupplyAmount)
		assert.Equal(t, u(1000), res.TargetAmount)

		require.Len(t, exec.calls, 2)
		assert.False(t, exec.calls[0].exactTarget)
		assert.Equal(t, u(252), exec.calls[0].amount)
		assert.True(t, exec.calls[0].bound.IsZero())

		last := exec.calls[1]
		assert.True(t, last.exactTarget)
		assert.Equal(t, u(1000), last.amount)
		// The last hop may spend no more than the first hop produced.
		assert.True(t, last.bound.Cmp(u(502)) >= 0)
	})

	t.Run("Single Hop Reports What It Spent", func(t *testing.T) {
		m, path := setup(t)
		exec := newRecordingExecutor(m)

		res, err := ExecuteExactTarget(exec, m, trader, path[:1], u(1000), u(1000))
		require.NoError(t, err)
		assert.Equal(t, u(502), res.SupplyAmount)
		require.Len(t, exec.calls, 1)
		assert.True(t, exec.calls[0].exactTarget)
		assert.Equal(t, u(502), exec.calls[0].bound)
	})

	t.Run("Estimate Above Maximum Executes Nothing", func(t *testing.T) {
		m, path := setup(t)
		exec := newRecordingExecutor(m)

		_, err := ExecuteExactTarget(exec, m, trader, path, u(1000), u(251))
		assert.ErrorIs(t, err, ErrAboveMaximumSupply)
		assert.Empty(t, exec.calls)
	})

	t.Run("Unpriceable Target Executes Nothing", func(t *testing.T) {
		m, path := setup(t)
		exec := newRecordingExecutor(m)

		_, err := ExecuteExactTarget(exec, m, trader, path, u(2_000_000), u(1_000_000_000))
		assert.Error(t, err)
		assert.Empty(t, exec.calls)
	})

	t.Run("Last Hop Failure Is Reported", func(t *testing.T) {
		m, path := setup(t)
		exec := newRecordingExecutor(m)
		exec.failAt = 1

		_, err := ExecuteExactTarget(exec, m, trader, path, u(1000), u(300))
		assert.ErrorIs(t, err, errHopFailed)
	})
}

package aggregator

import (
	"testing"

	"github.com/defistate/defistate-aggregator-go/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func direction(supply, target engine.TokenID) engine.Direction {
	return engine.Direction{Supply: supply, Target: target}
}

func usesPoolTwice(p Path) bool {
	seen := make(map[engine.AvailablePool]bool, len(p))
	for _, hop := range p {
		if seen[hop.Canonical()] {
			return true
		}
		seen[hop.Canonical()] = true
	}
	return false
}

func TestFindBestPath(t *testing.T) {
	t.Run("Two Hop Route", func(t *testing.T) {
		m := newMarket()
		ab := m.add(t, engine.UniswapV2, tokenA, tokenB, 1_000_000, 2_000_000)
		bc := m.add(t, engine.UniswapV2, tokenB, tokenC, 1_000_000, 2_000_000)

		quote, ok := FindBestPath(m, m, direction(tokenA, tokenC), u(1000), ExactSupply, SearchOptions{HopLimit: 3})
		require.True(t, ok)
		assert.Equal(t, Path{ab, bc}, quote.Path)
		assert.Equal(t, u(3964), quote.Amount)
		assert.Equal(t, 1, m.snapshot, "the registry is read once per search")
	})

	t.Run("Hop Limit Is Exclusive", func(t *testing.T) {
		m := newMarket()
		m.add(t, engine.UniswapV2, tokenA, tokenB, 1_000_000, 2_000_000)
		m.add(t, engine.UniswapV2, tokenB, tokenC, 1_000_000, 2_000_000)

		for _, limit := range []int{0, 1, 2} {
			_, ok := FindBestPath(m, m, direction(tokenC, tokenA), u(1000), ExactSupply, SearchOptions{HopLimit: limit})
			assert.False(t, ok, "limit %d", limit)
		}
		_, ok := FindBestPath(m, m, direction(tokenC, tokenA), u(1000), ExactSupply, SearchOptions{HopLimit: 3})
		assert.True(t, ok)
	})

	t.Run("Direct Route Wins When It Pays More", func(t *testing.T) {
		m := newMarket()
		m.add(t, engine.UniswapV2, tokenA, tokenB, 1_000_000, 2_000_000)
		m.add(t, engine.UniswapV2, tokenB, tokenC, 1_000_000, 2_000_000)
		ac := m.add(t, engine.UniswapV2, tokenA, tokenC, 1_000_000, 5_000_000)

		quote, ok := FindBestPath(m, m, direction(tokenA, tokenC), u(1000), ExactSupply, SearchOptions{HopLimit: 3})
		require.True(t, ok)
		assert.Equal(t, Path{ac}, quote.Path)
		assert.Equal(t, u(4980), quote.Amount)
	})

	t.Run("Indirect Route Wins When It Pays More", func(t *testing.T) {
		m := newMarket()
		ab := m.add(t, engine.UniswapV2, tokenA, tokenB, 1_000_000, 2_000_000)
		bc := m.add(t, engine.UniswapV2, tokenB, tokenC, 1_000_000, 2_000_000)
		m.add(t, engine.UniswapV2, tokenA, tokenC, 1_000_000, 3_000_000)

		quote, ok := FindBestPath(m, m, direction(tokenA, tokenC), u(1000), ExactSupply, SearchOptions{HopLimit: 3})
		require.True(t, ok)
		assert.Equal(t, Path{ab, bc}, quote.Path)
	})

	t.Run("Ties Go To The Earlier Candidate", func(t *testing.T) {
		m := newMarket()
		first := m.add(t, engine.UniswapV3, tokenA, tokenB, 1_000_000, 2_000_000)
		m.add(t, engine.UniswapV2, tokenA, tokenB, 1_000_000, 2_000_000)

		quote, ok := FindBestPath(m, m, direction(tokenA, tokenB), u(1000), ExactSupply, SearchOptions{HopLimit: 2})
		require.True(t, ok)
		assert.Equal(t, Path{first}, quote.Path)

		quote, ok = FindBestPath(m, m, direction(tokenA, tokenB), u(1000), ExactTarget, SearchOptions{HopLimit: 2})
		require.True(t, ok)
		assert.Equal(t, Path{first}, quote.Path)
	})

	t.Run("Exact Target Minimizes Supply", func(t *testing.T) {
		m := newMarket()
		ab := m.add(t, engine.UniswapV2, tokenA, tokenB, 1_000_000, 2_000_000)
		bc := m.add(t, engine.UniswapV2, tokenB, tokenC, 1_000_000, 2_000_000)
		m.add(t, engine.UniswapV2, tokenA, tokenC, 1_000_000, 1_000_000)

		quote, ok := FindBestPath(m, m, direction(tokenA, tokenC), u(1000), ExactTarget, SearchOptions{HopLimit: 3})
		require.True(t, ok)
		assert.Equal(t, Path{ab, bc}, quote.Path)
		assert.Equal(t, u(252), quote.Amount)
	})

	t.Run("Zero Supply Finds Nothing", func(t *testing.T) {
		m := newMarket()
		m.add(t, engine.UniswapV2, tokenA, tokenB, 1_000_000, 2_000_000)

		_, ok := FindBestPath(m, m, direction(tokenA, tokenB), u(0), ExactSupply, SearchOptions{HopLimit: 3})
		assert.False(t, ok)
	})

	t.Run("Zero Target Finds Nothing", func(t *testing.T) {
		m := newMarket()
		m.add(t, engine.UniswapV2, tokenA, tokenB, 1_000_000, 2_000_000)
		m.add(t, engine.UniswapV2, tokenB, tokenC, 1_000_000, 2_000_000)

		for _, dir := range []engine.Direction{direction(tokenA, tokenB), direction(tokenA, tokenC)} {
			_, ok := FindBestPath(m, m, dir, u(0), ExactTarget, SearchOptions{HopLimit: 3})
			assert.False(t, ok)
		}
	})

	t.Run("Unpriceable Candidates Are Skipped", func(t *testing.T) {
		m := newMarket()
		m.add(t, engine.UniswapV2, tokenA, tokenC, 1_000, 1_000)
		ab := m.add(t, engine.UniswapV2, tokenA, tokenB, 1_000_000, 2_000_000)
		bc := m.add(t, engine.UniswapV2, tokenB, tokenC, 1_000_000, 2_000_000)

		quote, ok := FindBestPath(m, m, direction(tokenA, tokenC), u(1000), ExactTarget, SearchOptions{HopLimit: 3})
		require.True(t, ok)
		assert.Equal(t, Path{ab, bc}, quote.Path)
	})

	t.Run("Unknown Tokens And Bad Requests", func(t *testing.T) {
		m := newMarket()
		m.add(t, engine.UniswapV2, tokenA, tokenB, 1_000_000, 2_000_000)
		opts := SearchOptions{HopLimit: 3}

		_, ok := FindBestPath(m, m, direction(tokenA, tokenD), u(1000), ExactSupply, opts)
		assert.False(t, ok)
		_, ok = FindBestPath(m, m, direction(tokenA, tokenA), u(1000), ExactSupply, opts)
		assert.False(t, ok)
		_, ok = FindBestPath(m, m, direction(tokenA, tokenB), nil, ExactSupply, opts)
		assert.False(t, ok)
	})

	t.Run("Repeated Quotes Agree", func(t *testing.T) {
		m := newMarket()
		m.add(t, engine.UniswapV2, tokenA, tokenB, 1_000_000, 2_000_000)
		m.add(t, engine.UniswapV3, tokenA, tokenB, 1_500_000, 2_900_000)
		m.add(t, engine.UniswapV2, tokenB, tokenC, 1_000_000, 2_000_000)
		m.add(t, engine.UniswapV2, tokenA, tokenC, 1_000_000, 3_000_000)

		for _, mode := range []Mode{ExactSupply, ExactTarget} {
			first, ok := FindBestPath(m, m, direction(tokenA, tokenC), u(1000), mode, SearchOptions{HopLimit: 4})
			require.True(t, ok)
			second, ok := FindBestPath(m, m, direction(tokenA, tokenC), u(1000), mode, SearchOptions{HopLimit: 4})
			require.True(t, ok)
			assert.Equal(t, first, second, mode.String())
		}
	})
}

func TestFindBestPathObserver(t *testing.T) {
	m := newMarket()
	m.add(t, engine.UniswapV2, tokenA, tokenB, 1_000_000, 2_000_000)
	m.add(t, engine.UniswapV3, tokenA, tokenB, 900_000, 2_000_000)
	m.add(t, engine.UniswapV2, tokenB, tokenC, 1_000_000, 2_000_000)
	m.add(t, engine.UniswapV2, tokenA, tokenC, 1_000_000, 3_000_000)

	t.Run("Accepted Candidates Strictly Improve", func(t *testing.T) {
		for _, mode := range []Mode{ExactSupply, ExactTarget} {
			var accepted []Candidate
			opts := SearchOptions{HopLimit: 5, Observer: func(c Candidate) {
				assert.Equal(t, mode, c.Mode)
				if c.Accepted {
					accepted = append(accepted, c)
				}
			}}
			quote, ok := FindBestPath(m, m, direction(tokenA, tokenC), u(1000), mode, opts)
			require.True(t, ok)
			require.NotEmpty(t, accepted)

			for i := 1; i < len(accepted); i++ {
				if mode == ExactSupply {
					assert.True(t, accepted[i].Amount.Gt(accepted[i-1].Amount))
				} else {
					assert.True(t, accepted[i].Amount.Lt(accepted[i-1].Amount))
				}
			}
			last := accepted[len(accepted)-1]
			assert.Equal(t, quote.Path, last.Path)
			assert.Equal(t, quote.Amount, last.Amount)
		}
	})

	t.Run("Every Candidate Is Complete And Within The Limit", func(t *testing.T) {
		const limit = 4
		count := 0
		opts := SearchOptions{HopLimit: limit, Observer: func(c Candidate) {
			count++
			assert.Less(t, len(c.Path), limit)
			assert.True(t, c.Path.Continuous())
			assert.Equal(t, tokenA, c.Path.Source())
			assert.Equal(t, tokenC, c.Path.Destination())
		}}
		_, ok := FindBestPath(m, m, direction(tokenA, tokenC), u(1000), ExactSupply, opts)
		require.True(t, ok)
		assert.Positive(t, count)
	})
}

func TestFindBestPathNoRepeatPools(t *testing.T) {
	m := newMarket()
	m.add(t, engine.UniswapV2, tokenA, tokenB, 1_000_000, 2_000_000)
	m.add(t, engine.UniswapV2, tokenB, tokenC, 1_000_000, 2_000_000)

	collect := func(noRepeat bool) []Path {
		var paths []Path
		opts := SearchOptions{HopLimit: 6, NoRepeatPools: noRepeat, Observer: func(c Candidate) {
			paths = append(paths, c.Path)
		}}
		_, ok := FindBestPath(m, m, direction(tokenA, tokenC), u(1000), ExactSupply, opts)
		require.True(t, ok)
		return paths
	}

	t.Run("Revisiting Is Allowed By Default", func(t *testing.T) {
		repeated := 0
		for _, p := range collect(false) {
			if usesPoolTwice(p) {
				repeated++
			}
		}
		assert.Positive(t, repeated)
	})

	t.Run("Flag Forbids Revisiting", func(t *testing.T) {
		paths := collect(true)
		require.Len(t, paths, 1)
		assert.Len(t, paths[0], 2)
	})
}

package indexer

import (
	"testing"

	"github.com/defistate/defistate-aggregator-go/engine"
	poolregistry "github.com/defistate/defistate-aggregator-go/protocols/poolregistry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexablePoolRegistry(t *testing.T) {
	// --- Test Data Setup ---
	weth := common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdc := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	pair, err := engine.NewTradingPair(weth, usdc)
	require.NoError(t, err)

	v3 := poolregistry.NewPool(200, engine.UniswapV3, pair)
	v2 := poolregistry.NewPool(100, engine.UniswapV2, pair)
	testView := poolregistry.PoolRegistry{Pools: []poolregistry.Pool{v3, v2}}

	t.Run("Indexer Factory and Method", func(t *testing.T) {
		registry := New().Index(testView)
		require.NotNil(t, registry)
		assert.Len(t, registry.All(), 2)
	})

	indexer := NewIndexablePoolRegistry(testView)

	t.Run("Successful Lookups", func(t *testing.T) {
		p, found := indexer.GetByID(100)
		assert.True(t, found)
		assert.Equal(t, engine.UniswapV2, p.Venue)

		p, found = indexer.GetByPoolKey(v3.Key)
		assert.True(t, found)
		assert.Equal(t, uint64(200), p.ID)

		p, found = indexer.GetByAvailable(v3.Available().Swap())
		assert.True(t, found, "a hop in either orientation resolves to its listing")
		assert.Equal(t, uint64(200), p.ID)
	})

	t.Run("Not Found Lookups", func(t *testing.T) {
		_, found := indexer.GetByID(999)
		assert.False(t, found)

		other, err := engine.NewTradingPair(weth, common.HexToAddress("0x1111111111111111111111111111111111111111"))
		require.NoError(t, err)
		_, found = indexer.GetByAvailable(engine.AvailablePool{Venue: engine.UniswapV2, Pair: other})
		assert.False(t, found)
	})

	t.Run("Active Pools Are Ordered By ID", func(t *testing.T) {
		active := indexer.AllActivePools()
		require.Len(t, active, 2)
		assert.Equal(t, engine.UniswapV2, active[0].Venue)
		assert.Equal(t, engine.UniswapV3, active[1].Venue)
		assert.True(t, active[0].Pair.IsCanonical())
	})

	t.Run("All Returns A Copy", func(t *testing.T) {
		all := indexer.All()
		all[0].Venue = "modified"
		original, _ := indexer.GetByID(100)
		assert.Equal(t, engine.UniswapV2, original.Venue)
	})

	t.Run("Edge Case - Nil Pools", func(t *testing.T) {
		empty := NewIndexablePoolRegistry(poolregistry.PoolRegistry{})
		assert.NotNil(t, empty.All())
		assert.Empty(t, empty.AllActivePools())
	})
}

package main

import (
	"testing"

	"github.com/defistate/defistate-aggregator-go/aggregator"
	"github.com/defistate/defistate-aggregator-go/amm"
	"github.com/defistate/defistate-aggregator-go/engine"
	"github.com/defistate/defistate-aggregator-go/protocols/tokenregistry"
	uniswapv2 "github.com/defistate/defistate-aggregator-go/protocols/uniswapv2"
	uniswapv3 "github.com/defistate/defistate-aggregator-go/protocols/uniswapv3"
	"github.com/defistate/defistate-aggregator-go/protocols/uniswapv3/calculator/sqrtpricemath"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tokenA = common.HexToAddress("0x0a")
	tokenB = common.HexToAddress("0x0b")
	tokenC = common.HexToAddress("0x0c")
)

func hop(supply, target common.Address) engine.AvailablePool {
	return engine.AvailablePool{Venue: engine.UniswapV2, Pair: engine.TradingPair{First: supply, Second: target}}
}

func TestSwapLog(t *testing.T) {
	log := NewSwapLog(2)
	recent, total := log.Recent()
	assert.Empty(t, recent)
	assert.Zero(t, total)

	for i := uint64(1); i <= 3; i++ {
		log.Add(aggregator.SwapEvent{SupplyAmount: uint256.NewInt(i)})
	}

	recent, total = log.Recent()
	assert.Equal(t, uint64(3), total)
	require.Len(t, recent, 2)
	assert.Equal(t, uint256.NewInt(3), recent[0].SupplyAmount, "newest first")
	assert.Equal(t, uint256.NewInt(2), recent[1].SupplyAmount)
}

func TestTokenBook(t *testing.T) {
	book := newTokenBook([]tokenregistry.Token{
		{Address: tokenA, Symbol: "AAA", Decimals: 18},
		{Address: tokenB, Symbol: "BBB", Decimals: 6},
	})

	got, err := book.resolve(" aaa ")
	require.NoError(t, err)
	assert.Equal(t, tokenA, got.Address)

	got, err = book.resolve(tokenB.Hex())
	require.NoError(t, err)
	assert.Equal(t, "BBB", got.Symbol)

	_, err = book.resolve(tokenC.Hex())
	assert.Error(t, err)
	_, err = book.resolve("CCC")
	assert.Error(t, err)
	_, err = book.resolve("")
	assert.Error(t, err)

	assert.Equal(t, "BBB", book.symbol(tokenB))
	assert.Equal(t, tokenC.Hex()[:10]+"...", book.symbol(tokenC))
	assert.Equal(t, uint8(6), book.decimals(tokenB))
	assert.Zero(t, book.decimals(tokenC))
}

func TestRevisitedTokens(t *testing.T) {
	assert.Empty(t, revisitedTokens(nil))
	assert.Empty(t, revisitedTokens(aggregator.Path{hop(tokenA, tokenB), hop(tokenB, tokenC)}))
	assert.Equal(t,
		[]engine.TokenID{tokenA},
		revisitedTokens(aggregator.Path{hop(tokenA, tokenB), hop(tokenB, tokenA), hop(tokenA, tokenC)}),
	)
}

func TestDescribeState(t *testing.T) {
	book := newTokenBook([]tokenregistry.Token{
		{Address: tokenA, Symbol: "AAA", Decimals: 18},
		{Address: tokenB, Symbol: "BBB", Decimals: 6},
	})

	v2 := amm.PoolState{UniswapV2: &uniswapv2.Pool{
		Token0: tokenA, Token1: tokenB,
		Reserve0: uint256.MustFromDecimal("1500000000000000000"), Reserve1: uint256.NewInt(2_000_000),
		FeeBps: 30,
	}}
	assert.Equal(t, "reserves 1.5 AAA / 2 BBB, fee 30 bps", describeState(v2, book))

	e18 := uint256.MustFromDecimal("1000000000000000000")
	v3 := amm.PoolState{UniswapV3: &uniswapv3.Pool{
		Token0: tokenA, Token1: tokenB,
		Fee: 3000, Liquidity: e18, SqrtPriceX96: sqrtpricemath.Q96.Clone(),
	}}
	assert.Equal(t,
		"virtual reserves 1 AAA / 1000000000000 BBB, liquidity 1000000000000000000, sqrtPriceX96 79228162514264337593543950336, fee 3000",
		describeState(v3, book),
	)

	// A pool with no price has no virtual reserves.
	v3.UniswapV3.SqrtPriceX96 = uint256.NewInt(0)
	assert.Equal(t, "liquidity 1000000000000000000, sqrtPriceX96 0, fee 3000", describeState(v3, book))

	assert.Contains(t, describeState(amm.PoolState{}, book), "missing")
}

package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/defistate/defistate-aggregator-go/aggregator"
	"github.com/defistate/defistate-aggregator-go/amm"
	"github.com/defistate/defistate-aggregator-go/cmd/routerd/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedExampleConfig(t *testing.T) {
	cfg, err := config.LoadConfig("config.example.yaml")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dex, err := amm.New(amm.Config{Tokens: cfg.Tokens, Logger: logger})
	require.NoError(t, err)
	require.NoError(t, seed(dex, cfg))

	assert.Len(t, dex.Pools(), 3)
	alice := common.HexToAddress("0xa11ce")
	tokenA := common.HexToAddress("0x0a")
	assert.Equal(t, uint256.NewInt(10_000), dex.Balance(alice, tokenA))

	agg, err := aggregator.New(aggregator.Config{Environment: dex, HopLimit: cfg.HopLimit, Logger: logger})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultHopLimit, agg.HopLimit())
	ev, err := agg.SwapWithExactSupply(alice, tokenA, common.HexToAddress("0x0b"), uint256.NewInt(1000), uint256.NewInt(0))
	require.NoError(t, err)
	assert.False(t, ev.TargetAmount.IsZero())
}

func TestSeedRejectsDuplicatePools(t *testing.T) {
	cfg, err := config.LoadConfig("config.example.yaml")
	require.NoError(t, err)
	cfg.Pools = append(cfg.Pools, cfg.Pools[0])

	dex, err := amm.New(amm.Config{Tokens: cfg.Tokens, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)
	assert.ErrorIs(t, seed(dex, cfg), amm.ErrPoolExists)
}

func TestSyncPools(t *testing.T) {
	cfg, err := config.LoadConfig("config.example.yaml")
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dex, err := amm.New(amm.Config{Tokens: cfg.Tokens, Logger: logger})
	require.NoError(t, err)
	require.NoError(t, seed(dex, cfg))

	alice := common.HexToAddress("0xa11ce")
	tokenA := common.HexToAddress("0x0a")
	tokenB := common.HexToAddress("0x0b")
	agg, err := aggregator.New(aggregator.Config{Environment: dex, HopLimit: cfg.HopLimit, Logger: logger})
	require.NoError(t, err)
	_, err = agg.SwapWithExactSupply(alice, tokenA, tokenB, uint256.NewInt(1000), uint256.NewInt(0))
	require.NoError(t, err)
	traded := dex.UniswapV2Pools()

	cfg.Pools[0].Delisted = true
	require.NoError(t, syncPools(dex, cfg))
	require.Len(t, dex.Pools(), 2)
	for _, p := range dex.Pools() {
		assert.NotEqual(t, uint64(1), p.Pool.ID)
	}

	cfg.Pools[0].Delisted = false
	require.NoError(t, syncPools(dex, cfg))
	require.Len(t, dex.Pools(), 3)
	assert.Equal(t, traded, dex.UniswapV2Pools(), "relisting keeps the traded reserves")

	cfg.Pools = cfg.Pools[1:]
	require.NoError(t, syncPools(dex, cfg))
	assert.Len(t, dex.Pools(), 2, "pools dropped from the file are delisted")
}

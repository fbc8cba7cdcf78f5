package amm

import (
	"fmt"

	"github.com/defistate/defistate-aggregator-go/engine"
	poolregistry "github.com/defistate/defistate-aggregator-go/protocols/poolregistry"
	v2calc "github.com/defistate/defistate-aggregator-go/protocols/uniswapv2/calculator"
	v3calc "github.com/defistate/defistate-aggregator-go/protocols/uniswapv3/calculator"
	"github.com/holiman/uint256"
)

// hopResult is one priced hop and the venue update that would realize it.
type hopResult struct {
	amountIn  *uint256.Int
	amountOut *uint256.Int
	commit    func()
}

// simulateExactIn prices supplying amountIn through the listing in the orientation of hop.
func (s *state) simulateExactIn(listing poolregistry.Pool, hop engine.AvailablePool, amountIn *uint256.Int) (hopResult, error) {
	tokenIn, tokenOut := hop.SupplyToken(), hop.TargetToken()
	switch listing.Venue {
	case engine.UniswapV2:
		pool, ok := s.v2[listing.Key]
		if !ok {
			return hopResult{}, fmt.Errorf("%w: no state for %s", ErrPoolNotFound, listing)
		}
		out, next, err := v2calc.SimulateSwap(amountIn, tokenIn, tokenOut, pool)
		if err != nil {
			return hopResult{}, err
		}
		return hopResult{amountIn: amountIn, amountOut: out, commit: func() { s.v2[listing.Key] = next }}, nil
	case engine.UniswapV3:
		pool, ok := s.v3[listing.Key]
		if !ok {
			return hopResult{}, fmt.Errorf("%w: no state for %s", ErrPoolNotFound, listing)
		}
		out, next, err := v3calc.SimulateSwap(amountIn, tokenIn, tokenOut, pool)
		if err != nil {
			return hopResult{}, err
		}
		return hopResult{amountIn: amountIn, amountOut: out, commit: func() { s.v3[listing.Key] = next }}, nil
	}
	return hopResult{}, fmt.Errorf("%w: %q", ErrUnknownVenue, listing.Venue)
}

// simulateExactOut prices receiving amountOut through the listing in the orientation of hop.
func (s *state) simulateExactOut(listing poolregistry.Pool, hop engine.AvailablePool, amountOut *uint256.Int) (hopResult, error) {
	tokenIn, tokenOut := hop.SupplyToken(), hop.TargetToken()
	switch listing.Venue {
	case engine.UniswapV2:
		pool, ok := s.v2[listing.Key]
		if !ok {
			return hopResult{}, fmt.Errorf("%w: no state for %s", ErrPoolNotFound, listing)
		}
		in, next, err := v2calc.SimulateSwapExactOut(amountOut, tokenIn, tokenOut, pool)
		if err != nil {
			return hopResult{}, err
		}
		return hopResult{amountIn: in, amountOut: amountOut, commit: func() { s.v2[listing.Key] = next }}, nil
	case engine.UniswapV3:
		pool, ok := s.v3[listing.Key]
		if !ok {
			return hopResult{}, fmt.Errorf("%w: no state for %s", ErrPoolNotFound, listing)
		}
		in, next, err := v3calc.SimulateSwapExactOut(amountOut, tokenIn, tokenOut, pool)
		if err != nil {
			return hopResult{}, err
		}
		return hopResult{amountIn: in, amountOut: amountOut, commit: func() { s.v3[listing.Key] = next }}, nil
	}
	return hopResult{}, fmt.Errorf("%w: %q", ErrUnknownVenue, listing.Venue)
}

// validatePoolState checks that ps can be listed and returns its canonical pair.
func validatePoolState(ps PoolState) (engine.VenueID, engine.TradingPair, error) {
	venue, err := ps.Venue()
	if err != nil {
		return "", engine.TradingPair{}, err
	}

	var (
		token0, token1 engine.TokenID
		complete       bool
	)
	switch venue {
	case engine.UniswapV2:
		p := ps.UniswapV2
		token0, token1 = p.Token0, p.Token1
		complete = p.Reserve0 != nil && p.Reserve1 != nil && p.FeeBps < 10_000
	case engine.UniswapV3:
		p := ps.UniswapV3
		token0, token1 = p.Token0, p.Token1
		complete = p.Liquidity != nil && p.SqrtPriceX96 != nil && p.Fee < 1_000_000
	}
	if !complete {
		return "", engine.TradingPair{}, fmt.Errorf("%w: %s pool needs amounts and a fee below 100%%", ErrInvalidPool, venue)
	}

	pair, err := engine.NewTradingPair(token0, token1)
	if err != nil {
		return "", engine.TradingPair{}, fmt.Errorf("%w: %w", ErrInvalidPool, err)
	}
	if pair.First != token0 {
		return "", engine.TradingPair{}, fmt.Errorf("%w: token0 %s must sort before token1 %s", ErrInvalidPool, token0.Hex(), token1.Hex())
	}
	return venue, pair, nil
}

// putPoolState stores a copy of ps under key with the given listing ID.
func (s *state) putPoolState(key poolregistry.PoolKey, id uint64, ps PoolState) {
	switch {
	case ps.UniswapV2 != nil:
		p := ps.UniswapV2.Clone()
		p.ID = id
		s.v2[key] = p
	case ps.UniswapV3 != nil:
		p := ps.UniswapV3.Clone()
		p.ID = id
		s.v3[key] = p
	}
}

package engine

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// TokenID identifies a tradable asset. Only equality is meaningful to the router;
// the byte ordering is used solely to normalize pool pairs.
type TokenID = common.Address

// VenueID tags the AMM implementation that owns a pool.
type VenueID string

const (
	// UniswapV2 is the constant-product venue.
	UniswapV2 VenueID = "uniswap-v2"
	// UniswapV3 is the concentrated-liquidity venue, priced within its active range.
	UniswapV3 VenueID = "uniswap-v3"
)

// Venues lists every venue the router knows how to price and execute against.
var Venues = []VenueID{UniswapV2, UniswapV3}

// Known reports whether v is one of the supported venues.
func (v VenueID) Known() bool {
	for _, known := range Venues {
		if v == known {
			return true
		}
	}
	return false
}

var ErrReflexivePair = errors.New("pair tokens must differ")

// TradingPair is a pair of tokens used in a given orientation: First is supplied, Second is received.
// A pool pair is the canonical (First < Second) form of a TradingPair.
type TradingPair struct {
	First  TokenID `json:"first"`
	Second TokenID `json:"second"`
}

// NewTradingPair returns the canonical pool pair for the two tokens, regardless of argument order.
func NewTradingPair(a, b TokenID) (TradingPair, error) {
	switch bytes.Compare(a[:], b[:]) {
	case -1:
		return TradingPair{First: a, Second: b}, nil
	case 1:
		return TradingPair{First: b, Second: a}, nil
	}
	return TradingPair{}, fmt.Errorf("%w: %s", ErrReflexivePair, a.Hex())
}

// Swap returns the same pair in the opposite orientation.
func (p TradingPair) Swap() TradingPair {
	return TradingPair{First: p.Second, Second: p.First}
}

// IsCanonical reports whether the pair is in pool-pair orientation.
func (p TradingPair) IsCanonical() bool {
	return bytes.Compare(p.First[:], p.Second[:]) < 0
}

// Canonical returns the pool-pair orientation of p.
func (p TradingPair) Canonical() TradingPair {
	if p.IsCanonical() {
		return p
	}
	return p.Swap()
}

func (p TradingPair) String() string {
	return p.First.Hex() + "/" + p.Second.Hex()
}

// AvailablePool is one venue/pair combination. Used as a hop, its Pair is oriented:
// Pair.First is the token supplied to the pool and Pair.Second the token received.
type AvailablePool struct {
	Venue VenueID     `json:"venue"`
	Pair  TradingPair `json:"pair"`
}

// Swap returns the pool in the opposite orientation. Both orientations price against the same reserves.
func (p AvailablePool) Swap() AvailablePool {
	return AvailablePool{Venue: p.Venue, Pair: p.Pair.Swap()}
}

// Canonical returns the pool in its registry orientation.
func (p AvailablePool) Canonical() AvailablePool {
	return AvailablePool{Venue: p.Venue, Pair: p.Pair.Canonical()}
}

// SupplyToken is the token a hop through this pool consumes.
func (p AvailablePool) SupplyToken() TokenID { return p.Pair.First }

// TargetToken is the token a hop through this pool produces.
func (p AvailablePool) TargetToken() TokenID { return p.Pair.Second }

func (p AvailablePool) String() string {
	return fmt.Sprintf("%s:%s->%s", p.Venue, p.Pair.First.Hex(), p.Pair.Second.Hex())
}

// Direction is a requested (supply, target) trade. It is never reflexive.
type Direction struct {
	Supply TokenID `json:"supply"`
	Target TokenID `json:"target"`
}

// Validate rejects reflexive directions.
func (d Direction) Validate() error {
	if d.Supply == d.Target {
		return fmt.Errorf("%w: %s", ErrReflexivePair, d.Supply.Hex())
	}
	return nil
}

// Pair returns the direction as an oriented pair.
func (d Direction) Pair() TradingPair {
	return TradingPair{First: d.Supply, Second: d.Target}
}

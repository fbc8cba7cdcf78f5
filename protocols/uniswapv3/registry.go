package uniswapv3

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Pool is a concentrated-liquidity pool reduced to its active range.
// Swaps move SqrtPriceX96 along the curve defined by Liquidity; no ticks are crossed.
type Pool struct {
	ID           uint64         `json:"id"`
	Token0       common.Address `json:"token0"`
	Token1       common.Address `json:"token1"`
	Fee          uint32         `json:"fee"` // in hundredths of a bip, i.e 3000 for 0.3%
	Liquidity    *uint256.Int   `json:"liquidity"`
	SqrtPriceX96 *uint256.Int   `json:"sqrtPriceX96"`
}

// Clone returns a copy of the pool that shares no mutable state with p.
func (p Pool) Clone() Pool {
	c := p
	if p.Liquidity != nil {
		c.Liquidity = p.Liquidity.Clone()
	}
	if p.SqrtPriceX96 != nil {
		c.SqrtPriceX96 = p.SqrtPriceX96.Clone()
	}
	return c
}

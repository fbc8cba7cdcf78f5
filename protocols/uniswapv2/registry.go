package uniswapv2

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Pool is a constant-product pool. Token0 sorts before Token1.
type Pool struct {
	ID       uint64         `json:"id"`
	Token0   common.Address `json:"token0"`
	Token1   common.Address `json:"token1"`
	Reserve0 *uint256.Int   `json:"reserve0"`
	Reserve1 *uint256.Int   `json:"reserve1"`
	FeeBps   uint16         `json:"feeBps"` // i.e 30 for 0.3%
}

// Clone returns a copy of the pool that shares no mutable state with p.
func (p Pool) Clone() Pool {
	c := p
	if p.Reserve0 != nil {
		c.Reserve0 = p.Reserve0.Clone()
	}
	if p.Reserve1 != nil {
		c.Reserve1 = p.Reserve1.Clone()
	}
	return c
}

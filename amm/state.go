package amm

import (
	"fmt"

	"github.com/defistate/defistate-aggregator-go/engine"
	poolregistry "github.com/defistate/defistate-aggregator-go/protocols/poolregistry"
	poolindexer "github.com/defistate/defistate-aggregator-go/protocols/poolregistry/indexer"
	uniswapv2 "github.com/defistate/defistate-aggregator-go/protocols/uniswapv2"
	uniswapv3 "github.com/defistate/defistate-aggregator-go/protocols/uniswapv3"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// PoolState is the venue state behind a listing. Exactly one field is set,
// and it decides the venue.
type PoolState struct {
	UniswapV2 *uniswapv2.Pool `json:"uniswapV2,omitempty" yaml:"uniswapV2,omitempty"`
	UniswapV3 *uniswapv3.Pool `json:"uniswapV3,omitempty" yaml:"uniswapV3,omitempty"`
}

// Key returns the registry key of the pool ps describes.
func (ps PoolState) Key() (poolregistry.PoolKey, error) {
	venue, pair, err := validatePoolState(ps)
	if err != nil {
		return poolregistry.PoolKey{}, err
	}
	return poolregistry.NewPoolKey(venue, pair), nil
}

// Venue returns the venue of the set field.
func (ps PoolState) Venue() (engine.VenueID, error) {
	switch {
	case ps.UniswapV2 != nil && ps.UniswapV3 == nil:
		return engine.UniswapV2, nil
	case ps.UniswapV3 != nil && ps.UniswapV2 == nil:
		return engine.UniswapV3, nil
	}
	return "", fmt.Errorf("%w: exactly one venue state must be set", ErrUnknownVenue)
}

// PoolInfo is a listed pool together with its current venue state.
type PoolInfo struct {
	Pool  poolregistry.Pool `json:"pool"`
	State PoolState         `json:"state"`
}

type balances map[common.Address]map[engine.TokenID]*uint256.Int

// state is everything an Atomic scope may change. Venue state is keyed by pool
// key and survives delisting, so a relisted pool keeps its reserves.
type state struct {
	listings poolregistry.PoolRegistry
	index    poolindexer.IndexedPoolRegistry
	v2       map[poolregistry.PoolKey]uniswapv2.Pool
	v3       map[poolregistry.PoolKey]uniswapv3.Pool
	balances balances
	nextID   uint64
}

func newState() *state {
	s := &state{
		v2:       make(map[poolregistry.PoolKey]uniswapv2.Pool),
		v3:       make(map[poolregistry.PoolKey]uniswapv3.Pool),
		balances: make(balances),
		nextID:   1,
	}
	s.index = poolindexer.New().Index(s.listings)
	return s
}

// clone returns a deep copy. The listing and its index are replaced, never
// modified, so they are shared.
func (s *state) clone() *state {
	c := &state{
		listings: s.listings,
		index:    s.index,
		v2:       make(map[poolregistry.PoolKey]uniswapv2.Pool, len(s.v2)),
		v3:       make(map[poolregistry.PoolKey]uniswapv3.Pool, len(s.v3)),
		balances: make(balances, len(s.balances)),
		nextID:   s.nextID,
	}
	for k, p := range s.v2 {
		c.v2[k] = p.Clone()
	}
	for k, p := range s.v3 {
		c.v3[k] = p.Clone()
	}
	for account, holdings := range s.balances {
		h := make(map[engine.TokenID]*uint256.Int, len(holdings))
		for token, amount := range holdings {
			h[token] = amount.Clone()
		}
		c.balances[account] = h
	}
	return c
}

func (s *state) setListings(listings poolregistry.PoolRegistry) {
	s.listings = listings
	s.index = poolindexer.New().Index(listings)
	for _, p := range listings.Pools {
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}
}

func (s *state) poolState(key poolregistry.PoolKey) (PoolState, bool) {
	if p, ok := s.v2[key]; ok {
		c := p.Clone()
		return PoolState{UniswapV2: &c}, true
	}
	if p, ok := s.v3[key]; ok {
		c := p.Clone()
		return PoolState{UniswapV3: &c}, true
	}
	return PoolState{}, false
}

func (s *state) applyRegistryDiff(diff poolregistry.PoolRegistryDiff) error {
	for _, added := range diff.PoolAdditions {
		if added.Key != poolregistry.NewPoolKey(added.Venue, added.Pair) {
			return fmt.Errorf("%w: key of %s does not match its venue and pair", ErrInvalidPool, added)
		}
		if s.idTaken(added.ID, added.Key) {
			return fmt.Errorf("%w: id %d belongs to another pool", ErrPoolExists, added.ID)
		}
		if !s.setPoolID(added.Key, added.ID) {
			return fmt.Errorf("%w: no venue state for %s", ErrPoolNotFound, added)
		}
	}
	listings, err := poolregistry.Patcher(s.listings, diff)
	if err != nil {
		return err
	}
	s.setListings(listings)
	return nil
}

func (s *state) known(key poolregistry.PoolKey) (poolregistry.Pool, bool) {
	if p, ok := s.v2[key]; ok {
		return poolregistry.NewPool(p.ID, engine.UniswapV2, engine.TradingPair{First: p.Token0, Second: p.Token1}), true
	}
	if p, ok := s.v3[key]; ok {
		return poolregistry.NewPool(p.ID, engine.UniswapV3, engine.TradingPair{First: p.Token0, Second: p.Token1}), true
	}
	return poolregistry.Pool{}, false
}

// v2ByID and v3ByID share pool values with s; callers must not modify them.
func (s *state) v2ByID() map[uint64]uniswapv2.Pool {
	out := make(map[uint64]uniswapv2.Pool, len(s.v2))
	for _, p := range s.v2 {
		out[p.ID] = p
	}
	return out
}

func (s *state) v3ByID() map[uint64]uniswapv3.Pool {
	out := make(map[uint64]uniswapv3.Pool, len(s.v3))
	for _, p := range s.v3 {
		out[p.ID] = p
	}
	return out
}

// idTaken reports whether venue state other than key's already uses id.
func (s *state) idTaken(id uint64, key poolregistry.PoolKey) bool {
	for k, p := range s.v2 {
		if p.ID == id && k != key {
			return true
		}
	}
	for k, p := range s.v3 {
		if p.ID == id && k != key {
			return true
		}
	}
	return false
}

// setPoolID renumbers parked venue state when its key is listed again.
func (s *state) setPoolID(key poolregistry.PoolKey, id uint64) bool {
	if p, ok := s.v2[key]; ok {
		p.ID = id
		s.v2[key] = p
		return true
	}
	if p, ok := s.v3[key]; ok {
		p.ID = id
		s.v3[key] = p
		return true
	}
	return false
}

func (s *state) balance(account common.Address, token engine.TokenID) *uint256.Int {
	if amount, ok := s.balances[account][token]; ok {
		return amount.Clone()
	}
	return new(uint256.Int)
}

func (s *state) credit(account common.Address, token engine.TokenID, amount *uint256.Int) error {
	sum, overflow := new(uint256.Int).AddOverflow(s.balance(account, token), amount)
	if overflow {
		return fmt.Errorf("%w: %s of %s", ErrBalanceOverflow, account.Hex(), token.Hex())
	}
	holdings, ok := s.balances[account]
	if !ok {
		holdings = make(map[engine.TokenID]*uint256.Int)
		s.balances[account] = holdings
	}
	holdings[token] = sum
	return nil
}

// transfer takes amountIn of tokenIn from account and gives it amountOut of
// tokenOut. Nothing changes unless both legs succeed.
func (s *state) transfer(account common.Address, tokenIn engine.TokenID, amountIn *uint256.Int, tokenOut engine.TokenID, amountOut *uint256.Int) error {
	have := s.balance(account, tokenIn)
	if have.Lt(amountIn) {
		return fmt.Errorf("%w: %s holds %s of %s, needs %s", ErrInsufficientBalance, account.Hex(), have.Dec(), tokenIn.Hex(), amountIn.Dec())
	}
	if _, overflow := new(uint256.Int).AddOverflow(s.balance(account, tokenOut), amountOut); overflow {
		return fmt.Errorf("%w: %s of %s", ErrBalanceOverflow, account.Hex(), tokenOut.Hex())
	}

	holdings, ok := s.balances[account]
	if !ok {
		holdings = make(map[engine.TokenID]*uint256.Int)
		s.balances[account] = holdings
	}
	holdings[tokenIn] = have.Sub(have, amountIn)
	return s.credit(account, tokenOut, amountOut)
}

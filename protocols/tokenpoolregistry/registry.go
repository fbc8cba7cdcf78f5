package tokenpoolregistry

import (
	"github.com/defistate/defistate-aggregator-go/engine"
)

// Hop is one pool used in one orientation. PoolIndex is the position of the
// pool in the snapshot the registry was built from.
type Hop struct {
	Pool      engine.AvailablePool
	PoolIndex int
}

// TokenPoolRegistry indexes the oriented hops of a pool snapshot by the token they consume.
// It is built once per snapshot and never mutated afterwards, so concurrent reads are safe.
type TokenPoolRegistry struct {
	tokenToIndex map[engine.TokenID]int

	// Core data stored in slices for cache-friendly access
	tokens    []engine.TokenID
	pools     []engine.AvailablePool
	adjacency [][]int
	hops      []Hop
}

// NewTokenPoolRegistry builds the index for pools. Hops out of a token keep
// snapshot order, with a pool's canonical orientation before its swapped one.
func NewTokenPoolRegistry(pools []engine.AvailablePool) *TokenPoolRegistry {
	r := &TokenPoolRegistry{
		tokenToIndex: make(map[engine.TokenID]int),
		pools:        make([]engine.AvailablePool, len(pools)),
		hops:         make([]Hop, 0, 2*len(pools)),
	}
	copy(r.pools, pools)

	for i, pool := range r.pools {
		r.addHop(Hop{Pool: pool, PoolIndex: i})
		r.addHop(Hop{Pool: pool.Swap(), PoolIndex: i})
	}
	return r
}

func (r *TokenPoolRegistry) tokenIndex(token engine.TokenID) int {
	index, exists := r.tokenToIndex[token]
	if !exists {
		index = len(r.tokens)
		r.tokenToIndex[token] = index
		r.tokens = append(r.tokens, token)
		r.adjacency = append(r.adjacency, nil)
	}
	return index
}

func (r *TokenPoolRegistry) addHop(hop Hop) {
	from := r.tokenIndex(hop.Pool.SupplyToken())
	r.tokenIndex(hop.Pool.TargetToken())

	r.adjacency[from] = append(r.adjacency[from], len(r.hops))
	r.hops = append(r.hops, hop)
}

// HopsFrom returns every hop that consumes token, in snapshot order.
// The returned slice is freshly allocated.
func (r *TokenPoolRegistry) HopsFrom(token engine.TokenID) []Hop {
	index, exists := r.tokenToIndex[token]
	if !exists {
		return nil
	}
	edges := r.adjacency[index]
	out := make([]Hop, len(edges))
	for i, hopIndex := range edges {
		out[i] = r.hops[hopIndex]
	}
	return out
}

// ForEachHopFrom calls fn for every hop that consumes token, in snapshot order,
// without allocating.
func (r *TokenPoolRegistry) ForEachHopFrom(token engine.TokenID, fn func(Hop)) {
	index, exists := r.tokenToIndex[token]
	if !exists {
		return
	}
	for _, hopIndex := range r.adjacency[index] {
		fn(r.hops[hopIndex])
	}
}

// PoolCount is the number of pools in the snapshot.
func (r *TokenPoolRegistry) PoolCount() int {
	return len(r.pools)
}

// HasToken reports whether any pool in the snapshot trades token.
func (r *TokenPoolRegistry) HasToken(token engine.TokenID) bool {
	_, exists := r.tokenToIndex[token]
	return exists
}

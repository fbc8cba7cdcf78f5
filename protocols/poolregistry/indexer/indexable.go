package indexer

import (
	"sort"

	"github.com/defistate/defistate-aggregator-go/engine"
	poolregistry "github.com/defistate/defistate-aggregator-go/protocols/poolregistry"
)

type Indexer struct{}

// New creates a new Indexer.
func New() *Indexer {
	return &Indexer{}
}

// Index creates an indexed pool registry from the full registry view.
func (i *Indexer) Index(view poolregistry.PoolRegistry) IndexedPoolRegistry {
	return NewIndexablePoolRegistry(view)
}

// IndexablePoolRegistry provides fast, indexed access to pool registry data.
type IndexablePoolRegistry struct {
	byID  map[uint64]poolregistry.Pool
	byKey map[poolregistry.PoolKey]poolregistry.Pool
	all   []poolregistry.Pool // sorted by ID
}

// NewIndexablePoolRegistry creates a new indexed pool registry from the view.
func NewIndexablePoolRegistry(view poolregistry.PoolRegistry) *IndexablePoolRegistry {
	pools := make([]poolregistry.Pool, len(view.Pools))
	copy(pools, view.Pools)
	sort.Slice(pools, func(i, j int) bool { return pools[i].ID < pools[j].ID })

	byID := make(map[uint64]poolregistry.Pool, len(pools))
	byKey := make(map[poolregistry.PoolKey]poolregistry.Pool, len(pools))
	for _, p := range pools {
		byID[p.ID] = p
		byKey[p.Key] = p
	}

	return &IndexablePoolRegistry{
		byID:  byID,
		byKey: byKey,
		all:   pools,
	}
}

// GetByID retrieves a pool by its unique ID.
func (ipr *IndexablePoolRegistry) GetByID(id uint64) (poolregistry.Pool, bool) {
	p, ok := ipr.byID[id]
	return p, ok
}

// GetByPoolKey retrieves a pool by its poolregistry.PoolKey.
func (ipr *IndexablePoolRegistry) GetByPoolKey(key poolregistry.PoolKey) (poolregistry.Pool, bool) {
	p, ok := ipr.byKey[key]
	return p, ok
}

// GetByAvailable retrieves the listing behind a hop, in either orientation.
func (ipr *IndexablePoolRegistry) GetByAvailable(pool engine.AvailablePool) (poolregistry.Pool, bool) {
	return ipr.GetByPoolKey(poolregistry.NewPoolKey(pool.Venue, pool.Pair))
}

// All returns a defensive copy of the slice of all pools, ordered by ID.
func (ipr *IndexablePoolRegistry) All() []poolregistry.Pool {
	allCopy := make([]poolregistry.Pool, len(ipr.all))
	copy(allCopy, ipr.all)
	return allCopy
}

// AllActivePools returns every listing as a canonically oriented AvailablePool, ordered by ID.
func (ipr *IndexablePoolRegistry) AllActivePools() []engine.AvailablePool {
	out := make([]engine.AvailablePool, len(ipr.all))
	for i, p := range ipr.all {
		out[i] = p.Available()
	}
	return out
}

package poolregistry

import "sort"

// PoolRegistryDiff represents the changes required to transition from one registry state to another.
type PoolRegistryDiff struct {
	// PoolAdditions contains pools that were listed.
	PoolAdditions []Pool `json:"poolAdditions,omitempty"`
	// PoolDeletions contains IDs of pools that were delisted.
	PoolDeletions []uint64 `json:"poolDeletions,omitempty"`
}

// IsEmpty returns true if the diff contains no changes.
func (d PoolRegistryDiff) IsEmpty() bool {
	return len(d.PoolAdditions) == 0 && len(d.PoolDeletions) == 0
}

// Differ calculates the difference between two full registry views (Old -> New).
// A pool whose ID survives but whose key changed is reported as a deletion plus an addition.
func Differ(old, new PoolRegistry) PoolRegistryDiff {
	oldPoolsMap := make(map[uint64]PoolKey, len(old.Pools))
	for _, pool := range old.Pools {
		oldPoolsMap[pool.ID] = pool.Key
	}

	newPoolsMap := make(map[uint64]Pool, len(new.Pools))
	for _, pool := range new.Pools {
		newPoolsMap[pool.ID] = pool
	}

	var poolAdditions []Pool
	var poolDeletions []uint64

	for newID, newPool := range newPoolsMap {
		oldKey, exists := oldPoolsMap[newID]
		if !exists {
			poolAdditions = append(poolAdditions, newPool)
			continue
		}
		if oldKey != newPool.Key {
			poolDeletions = append(poolDeletions, newID)
			poolAdditions = append(poolAdditions, newPool)
		}
	}

	for oldID := range oldPoolsMap {
		if _, exists := newPoolsMap[oldID]; !exists {
			poolDeletions = append(poolDeletions, oldID)
		}
	}

	sort.Slice(poolAdditions, func(i, j int) bool { return poolAdditions[i].ID < poolAdditions[j].ID })
	sort.Slice(poolDeletions, func(i, j int) bool { return poolDeletions[i] < poolDeletions[j] })

	return PoolRegistryDiff{
		PoolAdditions: poolAdditions,
		PoolDeletions: poolDeletions,
	}
}

package poolregistry

import (
	"fmt"
	"sort"
)

// Patcher (PoolRegistryPatcher) constructs a new registry state by applying a diff to a previous state.
// Deletions are applied before additions. Deleting an unknown ID or adding a pool whose ID or key
// is already listed fails, and prevState is never modified.
func Patcher(prevState PoolRegistry, diff PoolRegistryDiff) (PoolRegistry, error) {
	poolMap := make(map[uint64]Pool, len(prevState.Pools))
	keys := make(map[PoolKey]uint64, len(prevState.Pools))
	for _, pool := range prevState.Pools {
		poolMap[pool.ID] = pool
		keys[pool.Key] = pool.ID
	}

	for _, idToDelete := range diff.PoolDeletions {
		pool, exists := poolMap[idToDelete]
		if !exists {
			return PoolRegistry{}, fmt.Errorf("%w: id %d", ErrPoolNotFound, idToDelete)
		}
		delete(poolMap, idToDelete)
		delete(keys, pool.Key)
	}

	for _, addedPool := range diff.PoolAdditions {
		if _, exists := poolMap[addedPool.ID]; exists {
			return PoolRegistry{}, fmt.Errorf("%w: id %d", ErrDuplicatePool, addedPool.ID)
		}
		if id, exists := keys[addedPool.Key]; exists {
			return PoolRegistry{}, fmt.Errorf("%w: %s is listed as id %d", ErrDuplicatePool, addedPool.Available(), id)
		}
		poolMap[addedPool.ID] = addedPool
		keys[addedPool.Key] = addedPool.ID
	}

	finalPools := make([]Pool, 0, len(poolMap))
	for _, pool := range poolMap {
		finalPools = append(finalPools, pool)
	}
	sort.Slice(finalPools, func(i, j int) bool { return finalPools[i].ID < finalPools[j].ID })

	return PoolRegistry{Pools: finalPools}, nil
}

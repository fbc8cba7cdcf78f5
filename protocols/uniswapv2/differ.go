package uniswapv2

import "sort"

type UniswapV2SystemDiff struct {
	Additions []Pool   `json:"additions,omitempty"`
	Updates   []Pool   `json:"updates,omitempty"`
	Deletions []uint64 `json:"deletions,omitempty"`
}

// IsEmpty returns true if the diff contains no changes.
func (d UniswapV2SystemDiff) IsEmpty() bool {
	return len(d.Additions) == 0 && len(d.Updates) == 0 && len(d.Deletions) == 0
}

// Differ calculates the changes between two pool sets keyed by pool ID.
// Only reserves are compared for pools present in both sets; every output slice is sorted by ID.
func Differ(old, new map[uint64]Pool) UniswapV2SystemDiff {
	var diff UniswapV2SystemDiff

	for id, newPool := range new {
		oldPool, exists := old[id]
		if !exists {
			diff.Additions = append(diff.Additions, newPool)
			continue
		}
		if !oldPool.Reserve0.Eq(newPool.Reserve0) || !oldPool.Reserve1.Eq(newPool.Reserve1) {
			diff.Updates = append(diff.Updates, newPool)
		}
	}

	for id := range old {
		if _, exists := new[id]; !exists {
			diff.Deletions = append(diff.Deletions, id)
		}
	}

	sort.Slice(diff.Additions, func(i, j int) bool { return diff.Additions[i].ID < diff.Additions[j].ID })
	sort.Slice(diff.Updates, func(i, j int) bool { return diff.Updates[i].ID < diff.Updates[j].ID })
	sort.Slice(diff.Deletions, func(i, j int) bool { return diff.Deletions[i] < diff.Deletions[j] })
	return diff
}

package uniswapv3

import (
	"sort"
)

type UniswapV3SystemDiff struct {
	Additions []Pool   `json:"additions,omitempty"`
	Updates   []Pool   `json:"updates,omitempty"`
	Deletions []uint64 `json:"deletions,omitempty"`
}

// IsEmpty returns true if the diff contains no changes.
func (d UniswapV3SystemDiff) IsEmpty() bool {
	return len(d.Additions) == 0 && len(d.Updates) == 0 && len(d.Deletions) == 0
}

func poolChanged(old, new Pool) bool {
	if !old.SqrtPriceX96.Eq(new.SqrtPriceX96) {
		return true
	}
	if !old.Liquidity.Eq(new.Liquidity) {
		return true
	}
	return old.Fee != new.Fee
}

// Differ calculates the difference between two states of Uniswap V3 pools keyed by pool ID.
// Every output slice is sorted by ID.
func Differ(old, new map[uint64]Pool) UniswapV3SystemDiff {
	var additions []Pool
	var updates []Pool
	var deletions []uint64

	for newID, newPool := range new {
		oldPool, exists := old[newID]
		if !exists {
			additions = append(additions, newPool)
		} else if poolChanged(oldPool, newPool) {
			updates = append(updates, newPool)
		}
	}

	for oldID := range old {
		if _, exists := new[oldID]; !exists {
			deletions = append(deletions, oldID)
		}
	}

	sort.Slice(additions, func(i, j int) bool { return additions[i].ID < additions[j].ID })
	sort.Slice(updates, func(i, j int) bool { return updates[i].ID < updates[j].ID })
	sort.Slice(deletions, func(i, j int) bool { return deletions[i] < deletions[j] })

	return UniswapV3SystemDiff{
		Additions: additions,
		Updates:   updates,
		Deletions: deletions,
	}
}

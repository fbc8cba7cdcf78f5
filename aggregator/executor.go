package aggregator

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Execution is the outcome of applying a path.
type Execution struct {
	SupplyAmount *uint256.Int
	TargetAmount *uint256.Int
}

// ExecuteExactSupply applies path hop by hop, feeding each hop's output into the
// next. Only the final hop is bounded, by minTargetAmount. The executor does not
// undo anything itself: callers run it inside an atomic scope so that a failed
// hop discards the hops before it.
func ExecuteExactSupply(executor SwapExecutor, caller common.Address, path Path, supplyAmount, minTargetAmount *uint256.Int) (Execution, error) {
	if len(path) == 0 {
		return Execution{}, ErrEmptyPath
	}
	if supplyAmount == nil || minTargetAmount == nil {
		return Execution{}, ErrInvalidAmount
	}
	if !path.Continuous() {
		return Execution{}, ErrBrokenPath
	}

	balance := supplyAmount
	last := len(path) - 1
	for i, hop := range path {
		minOut := new(uint256.Int)
		if i == last {
			minOut = minTargetAmount
		}
		out, err := executor.SwapWithExactSupply(caller, hop, balance, minOut)
		if err != nil {
			return Execution{}, fmt.Errorf("hop %d (%s): %w", i, hop, err)
		}
		balance = out
	}
	return Execution{SupplyAmount: supplyAmount.Clone(), TargetAmount: balance.Clone()}, nil
}

// ExecuteExactTarget prices path backwards from targetAmount, then supplies the
// estimate through every hop but the last with no bound. The last hop swaps for
// exactly targetAmount, spending at most what reached it. Whatever that hop does
// not spend stays with the caller in the intermediate token; it is not refunded.
func ExecuteExactTarget(
	executor SwapExecutor,
	oracle PricingOracle,
	caller common.Address,
	path Path,
	targetAmount, maxSupplyAmount *uint256.Int,
) (Execution, error) {
	if len(path) == 0 {
		return Execution{}, ErrEmptyPath
	}
	if targetAmount == nil || maxSupplyAmount == nil {
		return Execution{}, ErrInvalidAmount
	}

	estimate, err := EvaluateExactTarget(oracle, path, targetAmount)
	if err != nil {
		return Execution{}, err
	}
	if estimate.Gt(maxSupplyAmount) {
		return Execution{}, fmt.Errorf("%w: need %s, allowed %s", ErrAboveMaximumSupply, estimate.Dec(), maxSupplyAmount.Dec())
	}

	balance := estimate
	last := len(path) - 1
	for i, hop := range path[:last] {
		out, err := executor.SwapWithExactSupply(caller, hop, balance, new(uint256.Int))
		if err != nil {
			return Execution{}, fmt.Errorf("hop %d (%s): %w", i, hop, err)
		}
		balance = out
	}

	spent, err := executor.SwapWithExactTarget(caller, path[last], targetAmount, balance)
	if err != nil {
		return Execution{}, fmt.Errorf("hop %d (%s): %w", last, path[last], err)
	}

	supply := estimate
	if last == 0 {
		supply = spent
	}
	return Execution{SupplyAmount: supply.Clone(), TargetAmount: targetAmount.Clone()}, nil
}

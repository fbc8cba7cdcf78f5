package aggregator

import (
	"fmt"

	"github.com/holiman/uint256"
)

// EvaluateExactSupply walks path from its first hop, feeding each hop's output
// into the next, and returns the amount the final hop yields.
func EvaluateExactSupply(oracle PricingOracle, path Path, supplyAmount *uint256.Int) (*uint256.Int, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	if supplyAmount == nil {
		return nil, ErrInvalidAmount
	}

	amount := supplyAmount
	token := path[0].SupplyToken()
	for i, hop := range path {
		if hop.SupplyToken() != token {
			return nil, fmt.Errorf("%w: hop %d consumes %s, expected %s", ErrBrokenPath, i, hop.SupplyToken().Hex(), token.Hex())
		}
		next, err := oracle.GetTargetAmount(hop, amount)
		if err != nil {
			return nil, fmt.Errorf("hop %d (%s): %w", i, hop, err)
		}
		amount = next
		token = hop.TargetToken()
	}
	return amount, nil
}

// EvaluateExactTarget walks path backwards from its last hop, asking each hop
// what it needs to produce the amount the following hop requires, and returns
// the amount the first hop must be supplied.
func EvaluateExactTarget(oracle PricingOracle, path Path, targetAmount *uint256.Int) (*uint256.Int, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	if targetAmount == nil {
		return nil, ErrInvalidAmount
	}

	amount := targetAmount
	token := path[len(path)-1].TargetToken()
	for i := len(path) - 1; i >= 0; i-- {
		hop := path[i]
		if hop.TargetToken() != token {
			return nil, fmt.Errorf("%w: hop %d produces %s, expected %s", ErrBrokenPath, i, hop.TargetToken().Hex(), token.Hex())
		}
		prev, err := oracle.GetSupplyAmount(hop, amount)
		if err != nil {
			return nil, fmt.Errorf("hop %d (%s): %w", i, hop, err)
		}
		amount = prev
		token = hop.SupplyToken()
	}
	return amount, nil
}

package aggregator

import "errors"

var (
	// ErrInvalidCurrencyID is returned for reflexive directions and tokens the AMM does not know.
	ErrInvalidCurrencyID = errors.New("invalid currency id")
	// ErrInvalidAmount is returned when a request amount is missing.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNoPossibleTradingPath is returned when no complete path exists within the hop limit.
	ErrNoPossibleTradingPath = errors.New("no possible trading path")
	// ErrBelowMinimumTarget is returned when the best quote does not exceed the caller's minimum.
	ErrBelowMinimumTarget = errors.New("best path target is below the minimum target")
	// ErrAboveMaximumSupply is returned when the best quote is not below the caller's maximum.
	ErrAboveMaximumSupply = errors.New("best path supply is above the maximum supply")
	// ErrExecutionFailed wraps the failure of any hop. Nothing the swap did is kept.
	ErrExecutionFailed = errors.New("swap execution failed")

	ErrEmptyPath       = errors.New("empty path")
	ErrBrokenPath      = errors.New("path is not continuous")
	ErrInvalidHopLimit = errors.New("hop limit must be at least 1")
)

package server

import (
	"errors"

	"github.com/defistate/defistate-aggregator-go/aggregator"
)

// Application error codes carried in JSON-RPC error responses.
const (
	CodeInvalidCurrency    = 4001
	CodeNoPath             = 4002
	CodeBelowMinimumTarget = 4003
	CodeAboveMaximumSupply = 4004
	CodeExecutionFailed    = 4005
	CodeInvalidAmount      = 4006
)

// Error is a routing failure with its JSON-RPC error code.
type Error struct {
	code int
	err  error
}

func (e *Error) Error() string  { return e.err.Error() }
func (e *Error) ErrorCode() int { return e.code }
func (e *Error) Unwrap() error  { return e.err }

// codeOf classifies an aggregator error. Unclassified errors get 0.
func codeOf(err error) int {
	switch {
	case errors.Is(err, aggregator.ErrInvalidCurrencyID):
		return CodeInvalidCurrency
	case errors.Is(err, aggregator.ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, aggregator.ErrNoPossibleTradingPath):
		return CodeNoPath
	case errors.Is(err, aggregator.ErrExecutionFailed):
		return CodeExecutionFailed
	case errors.Is(err, aggregator.ErrBelowMinimumTarget):
		return CodeBelowMinimumTarget
	case errors.Is(err, aggregator.ErrAboveMaximumSupply):
		return CodeAboveMaximumSupply
	}
	return 0
}

func rpcError(err error) error {
	if err == nil {
		return nil
	}
	if code := codeOf(err); code != 0 {
		return &Error{code: code, err: err}
	}
	return err
}

// Sentinel returns the aggregator error a code stands for, or nil for codes
// this package does not define.
func Sentinel(code int) error {
	switch code {
	case CodeInvalidCurrency:
		return aggregator.ErrInvalidCurrencyID
	case CodeInvalidAmount:
		return aggregator.ErrInvalidAmount
	case CodeNoPath:
		return aggregator.ErrNoPossibleTradingPath
	case CodeBelowMinimumTarget:
		return aggregator.ErrBelowMinimumTarget
	case CodeAboveMaximumSupply:
		return aggregator.ErrAboveMaximumSupply
	case CodeExecutionFailed:
		return aggregator.ErrExecutionFailed
	}
	return nil
}

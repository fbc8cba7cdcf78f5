package amm

import "errors"

var (
	ErrUnknownVenue = errors.New("unknown venue")
	ErrPoolNotFound = errors.New("pool not found")
	ErrPoolExists   = errors.New("pool already exists")
	ErrUnknownToken = errors.New("unknown token")
	// ErrInvalidPool is returned when a pool cannot be listed as described.
	ErrInvalidPool = errors.New("invalid pool")
	// ErrInsufficientBalance is returned when the caller cannot cover a swap input.
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBalanceOverflow     = errors.New("balance overflow")
	ErrInvalidAmount       = errors.New("invalid amount")
	// ErrBelowMinimumTarget is returned when a hop yields less than its minimum.
	ErrBelowMinimumTarget = errors.New("target amount below minimum")
	// ErrAboveMaximumSupply is returned when a hop needs more than its maximum.
	ErrAboveMaximumSupply = errors.New("supply amount above maximum")
	// ErrReadOnly is returned by swaps attempted inside a View scope.
	ErrReadOnly = errors.New("read-only scope")
)

package amm

import (
	"fmt"

	"github.com/defistate/defistate-aggregator-go/engine"
	poolregistry "github.com/defistate/defistate-aggregator-go/protocols/poolregistry"
	tokenindexer "github.com/defistate/defistate-aggregator-go/protocols/tokenregistry/indexer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Tx is the exchange as seen from inside one View or Atomic scope.
// It must not be used after the scope returns.
type Tx struct {
	st       *state
	tokens   tokenindexer.IndexedTokenSystem
	writable bool
}

// AllActivePools returns every listed pool, canonically oriented, in ID order.
func (tx *Tx) AllActivePools() []engine.AvailablePool {
	return tx.st.index.AllActivePools()
}

// ValidToken reports whether token is in the token registry.
func (tx *Tx) ValidToken(token engine.TokenID) bool {
	return tx.tokens.Contains(token)
}

// GetTargetAmount prices supplying supplyAmount to pool.
func (tx *Tx) GetTargetAmount(pool engine.AvailablePool, supplyAmount *uint256.Int) (*uint256.Int, error) {
	if supplyAmount == nil {
		return nil, ErrInvalidAmount
	}
	listing, err := tx.listing(pool)
	if err != nil {
		return nil, err
	}
	res, err := tx.st.simulateExactIn(listing, pool, supplyAmount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", listing, err)
	}
	return res.amountOut, nil
}

// GetSupplyAmount prices receiving targetAmount from pool.
func (tx *Tx) GetSupplyAmount(pool engine.AvailablePool, targetAmount *uint256.Int) (*uint256.Int, error) {
	if targetAmount == nil {
		return nil, ErrInvalidAmount
	}
	listing, err := tx.listing(pool)
	if err != nil {
		return nil, err
	}
	res, err := tx.st.simulateExactOut(listing, pool, targetAmount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", listing, err)
	}
	return res.amountIn, nil
}

// SwapWithExactSupply sells supplyAmount of the hop's supply token from caller's
// balance. It fails if the output is below minTargetAmount.
func (tx *Tx) SwapWithExactSupply(caller common.Address, pool engine.AvailablePool, supplyAmount, minTargetAmount *uint256.Int) (*uint256.Int, error) {
	if !tx.writable {
		return nil, ErrReadOnly
	}
	if supplyAmount == nil || minTargetAmount == nil {
		return nil, ErrInvalidAmount
	}
	listing, err := tx.listing(pool)
	if err != nil {
		return nil, err
	}

	res, err := tx.st.simulateExactIn(listing, pool, supplyAmount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", listing, err)
	}
	if res.amountOut.Lt(minTargetAmount) {
		return nil, fmt.Errorf("%w: %s yields %s, minimum %s", ErrBelowMinimumTarget, listing, res.amountOut.Dec(), minTargetAmount.Dec())
	}
	if err := tx.settle(caller, pool, res); err != nil {
		return nil, err
	}
	return res.amountOut.Clone(), nil
}

// SwapWithExactTarget buys targetAmount of the hop's target token for caller.
// It fails if the required input exceeds maxSupplyAmount.
func (tx *Tx) SwapWithExactTarget(caller common.Address, pool engine.AvailablePool, targetAmount, maxSupplyAmount *uint256.Int) (*uint256.Int, error) {
	if !tx.writable {
		return nil, ErrReadOnly
	}
	if targetAmount == nil || maxSupplyAmount == nil {
		return nil, ErrInvalidAmount
	}
	listing, err := tx.listing(pool)
	if err != nil {
		return nil, err
	}

	res, err := tx.st.simulateExactOut(listing, pool, targetAmount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", listing, err)
	}
	if res.amountIn.Gt(maxSupplyAmount) {
		return nil, fmt.Errorf("%w: %s needs %s, maximum %s", ErrAboveMaximumSupply, listing, res.amountIn.Dec(), maxSupplyAmount.Dec())
	}
	if err := tx.settle(caller, pool, res); err != nil {
		return nil, err
	}
	return res.amountIn.Clone(), nil
}

// Balance returns caller's holding of token as of this scope.
func (tx *Tx) Balance(account common.Address, token engine.TokenID) *uint256.Int {
	return tx.st.balance(account, token)
}

func (tx *Tx) settle(caller common.Address, pool engine.AvailablePool, res hopResult) error {
	if err := tx.st.transfer(caller, pool.SupplyToken(), res.amountIn, pool.TargetToken(), res.amountOut); err != nil {
		return err
	}
	res.commit()
	return nil
}

func (tx *Tx) listing(pool engine.AvailablePool) (poolregistry.Pool, error) {
	if !pool.Venue.Known() {
		return poolregistry.Pool{}, fmt.Errorf("%w: %q", ErrUnknownVenue, pool.Venue)
	}
	listing, ok := tx.st.index.GetByAvailable(pool)
	if !ok {
		return poolregistry.Pool{}, fmt.Errorf("%w: %s", ErrPoolNotFound, pool)
	}
	return listing, nil
}

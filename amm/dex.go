package amm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/defistate/defistate-aggregator-go/aggregator"
	"github.com/defistate/defistate-aggregator-go/engine"
	poolregistry "github.com/defistate/defistate-aggregator-go/protocols/poolregistry"
	"github.com/defistate/defistate-aggregator-go/protocols/tokenregistry"
	tokenindexer "github.com/defistate/defistate-aggregator-go/protocols/tokenregistry/indexer"
	uniswapv2 "github.com/defistate/defistate-aggregator-go/protocols/uniswapv2"
	uniswapv3 "github.com/defistate/defistate-aggregator-go/protocols/uniswapv3"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds the configuration for the Dex.
type Config struct {
	// Tokens is the token registry. It is fixed for the life of the Dex.
	Tokens []tokenregistry.Token
	Logger Logger
}

func (c *Config) validate() error {
	if len(c.Tokens) == 0 {
		return errors.New("config: at least one token is required")
	}
	if c.Logger == nil {
		return errors.New("config: Logger is required")
	}
	return nil
}

// Dex is an in-memory exchange holding pools of every known venue and the
// balances of its traders. Mutating scopes run one at a time against a private
// copy of the state that replaces the shared state only if the scope succeeds.
type Dex struct {
	mu     sync.RWMutex
	st     *state
	tokens tokenindexer.IndexedTokenSystem
	logger Logger
}

var _ aggregator.Environment = (*Dex)(nil)
var _ aggregator.Exchange = (*Tx)(nil)

// New creates an empty Dex.
func New(cfg Config) (*Dex, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	tokens, err := tokenindexer.New().Index(cfg.Tokens)
	if err != nil {
		return nil, fmt.Errorf("indexing tokens: %w", err)
	}
	return &Dex{
		st:     newState(),
		tokens: tokens,
		logger: cfg.Logger,
	}, nil
}

// View runs fn against the current state. Swaps inside fn fail with ErrReadOnly.
func (d *Dex) View(fn func(aggregator.Exchange) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return fn(&Tx{st: d.st, tokens: d.tokens})
}

// Atomic runs fn against a copy of the current state and keeps the copy only
// if fn returns nil.
func (d *Dex) Atomic(fn func(aggregator.Exchange) error) error {
	return d.mutate(func(st *state) error {
		return fn(&Tx{st: st, tokens: d.tokens, writable: true})
	})
}

func (d *Dex) mutate(fn func(*state) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := d.st.clone()
	if err := fn(next); err != nil {
		d.logger.Debug("atomic scope discarded", "error", err)
		return err
	}
	prev := d.st
	d.st = next
	d.logVenueChanges(prev, next)
	return nil
}

// logVenueChanges reports the pools a committed scope added or moved.
func (d *Dex) logVenueChanges(prev, next *state) {
	v2 := uniswapv2.Differ(prev.v2ByID(), next.v2ByID())
	v3 := uniswapv3.Differ(prev.v3ByID(), next.v3ByID())
	if v2.IsEmpty() && v3.IsEmpty() {
		return
	}
	d.logger.Debug("venue state committed",
		"v2Added", len(v2.Additions),
		"v2Updated", len(v2.Updates),
		"v3Added", len(v3.Additions),
		"v3Updated", len(v3.Updates),
	)
}

// Tokens returns the token registry.
func (d *Dex) Tokens() []tokenregistry.Token {
	return d.tokens.All()
}

// Token looks a token up by address.
func (d *Dex) Token(address common.Address) (tokenregistry.Token, bool) {
	return d.tokens.GetByAddress(address)
}

// TokenBySymbol looks a token up by symbol, case-insensitively.
func (d *Dex) TokenBySymbol(symbol string) (tokenregistry.Token, bool) {
	return d.tokens.GetBySymbol(symbol)
}

// ListPool adds a pool and lists it under the next free ID. The venue is the one
// whose state is set; token0 must sort before token1.
func (d *Dex) ListPool(ps PoolState) (poolregistry.Pool, error) {
	venue, pair, err := validatePoolState(ps)
	if err != nil {
		return poolregistry.Pool{}, err
	}
	for _, token := range []engine.TokenID{pair.First, pair.Second} {
		if !d.tokens.Contains(token) {
			return poolregistry.Pool{}, fmt.Errorf("%w: %s", ErrUnknownToken, token.Hex())
		}
	}

	var listed poolregistry.Pool
	err = d.mutate(func(st *state) error {
		key := poolregistry.NewPoolKey(venue, pair)
		if _, exists := st.poolState(key); exists {
			return fmt.Errorf("%w: %s %s", ErrPoolExists, venue, pair)
		}

		listed = poolregistry.NewPool(st.nextID, venue, pair)
		listings, err := poolregistry.Patcher(st.listings, poolregistry.PoolRegistryDiff{PoolAdditions: []poolregistry.Pool{listed}})
		if err != nil {
			return err
		}
		st.putPoolState(key, listed.ID, ps)
		st.setListings(listings)
		return nil
	})
	if err != nil {
		return poolregistry.Pool{}, err
	}
	d.logger.Info("pool listed", "pool", listed.String(), "key", listed.Key.Hex())
	return listed, nil
}

// DelistPool stops trading on a pool. Its reserves are kept and return if the
// same venue and pair is listed again through ApplyRegistryDiff.
func (d *Dex) DelistPool(key poolregistry.PoolKey) error {
	var delisted poolregistry.Pool
	err := d.mutate(func(st *state) error {
		pool, ok := st.index.GetByPoolKey(key)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPoolNotFound, key.Hex())
		}
		listings, err := poolregistry.Patcher(st.listings, poolregistry.PoolRegistryDiff{PoolDeletions: []uint64{pool.ID}})
		if err != nil {
			return err
		}
		st.setListings(listings)
		delisted = pool
		return nil
	})
	if err != nil {
		return err
	}
	d.logger.Info("pool delisted", "pool", delisted.String())
	return nil
}

// Listings returns the current pool registry.
func (d *Dex) Listings() poolregistry.PoolRegistry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return poolregistry.PoolRegistry{Pools: d.st.index.All()}
}

// ApplyRegistryDiff moves the listing to the state described by diff. Every
// added pool must have venue state from an earlier ListPool.
func (d *Dex) ApplyRegistryDiff(diff poolregistry.PoolRegistryDiff) error {
	if diff.IsEmpty() {
		return nil
	}
	err := d.mutate(func(st *state) error {
		return st.applyRegistryDiff(diff)
	})
	if err != nil {
		return err
	}
	d.logger.Info("pool registry updated", "added", len(diff.PoolAdditions), "removed", len(diff.PoolDeletions))
	return nil
}

// SetListings makes target the listing. Pools missing from target are
// delisted; pools in target need venue state from an earlier ListPool.
func (d *Dex) SetListings(target poolregistry.PoolRegistry) error {
	var diff poolregistry.PoolRegistryDiff
	err := d.mutate(func(st *state) error {
		diff = poolregistry.Differ(st.listings, target)
		return st.applyRegistryDiff(diff)
	})
	if err != nil {
		return err
	}
	if !diff.IsEmpty() {
		d.logger.Info("pool registry updated", "added", len(diff.PoolAdditions), "removed", len(diff.PoolDeletions))
	}
	return nil
}

// Known returns the registry record of the venue state held under key,
// listed or not.
func (d *Dex) Known(key poolregistry.PoolKey) (poolregistry.Pool, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.st.known(key)
}

// Pools returns every listed pool with its venue state, in ID order.
func (d *Dex) Pools() []PoolInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()

	listed := d.st.index.All()
	out := make([]PoolInfo, 0, len(listed))
	for _, p := range listed {
		ps, _ := d.st.poolState(p.Key)
		out = append(out, PoolInfo{Pool: p, State: ps})
	}
	return out
}

// Deposit credits amount of token to account.
func (d *Dex) Deposit(account common.Address, token engine.TokenID, amount *uint256.Int) error {
	if amount == nil {
		return ErrInvalidAmount
	}
	if !d.tokens.Contains(token) {
		return fmt.Errorf("%w: %s", ErrUnknownToken, token.Hex())
	}
	return d.mutate(func(st *state) error {
		return st.credit(account, token, amount)
	})
}

// Balance returns account's holding of token.
func (d *Dex) Balance(account common.Address, token engine.TokenID) *uint256.Int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.st.balance(account, token)
}

// Balances returns every holding of account.
func (d *Dex) Balances(account common.Address) map[engine.TokenID]*uint256.Int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[engine.TokenID]*uint256.Int, len(d.st.balances[account]))
	for token, amount := range d.st.balances[account] {
		out[token] = amount.Clone()
	}
	return out
}

// UniswapV2Pools returns the state of every constant-product pool, listed or
// not, keyed by pool ID.
func (d *Dex) UniswapV2Pools() map[uint64]uniswapv2.Pool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[uint64]uniswapv2.Pool, len(d.st.v2))
	for _, p := range d.st.v2 {
		out[p.ID] = p.Clone()
	}
	return out
}

// UniswapV3Pools returns the state of every concentrated-liquidity pool, listed
// or not, keyed by pool ID.
func (d *Dex) UniswapV3Pools() map[uint64]uniswapv3.Pool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[uint64]uniswapv3.Pool, len(d.st.v3))
	for _, p := range d.st.v3 {
		out[p.ID] = p.Clone()
	}
	return out
}

package aggregator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/defistate/defistate-aggregator-go/engine"
	uniswapv2 "github.com/defistate/defistate-aggregator-go/protocols/uniswapv2"
	v2calc "github.com/defistate/defistate-aggregator-go/protocols/uniswapv2/calculator"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	tokenA = common.HexToAddress("0x0a")
	tokenB = common.HexToAddress("0x0b")
	tokenC = common.HexToAddress("0x0c")
	tokenD = common.HexToAddress("0x0d")
	trader = common.HexToAddress("0xbeef")
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

// market is a constant-product exchange keyed by canonical AvailablePool.
// Pools of any venue tag are priced with the uniswapv2 calculator.
type market struct {
	order    []engine.AvailablePool
	pools    map[engine.AvailablePool]uniswapv2.Pool
	snapshot int
}

func newMarket() *market {
	return &market{pools: make(map[engine.AvailablePool]uniswapv2.Pool)}
}

// add lists a 30 bps pool holding reserveA of a and reserveB of b and returns it oriented a -> b.
func (m *market) add(t *testing.T, venue engine.VenueID, a, b engine.TokenID, reserveA, reserveB uint64) engine.AvailablePool {
	t.Helper()
	pair, err := engine.NewTradingPair(a, b)
	require.NoError(t, err)

	pool := uniswapv2.Pool{ID: uint64(len(m.order) + 1), Token0: pair.First, Token1: pair.Second, FeeBps: 30}
	if pair.First == a {
		pool.Reserve0, pool.Reserve1 = u(reserveA), u(reserveB)
	} else {
		pool.Reserve0, pool.Reserve1 = u(reserveB), u(reserveA)
	}

	canonical := engine.AvailablePool{Venue: venue, Pair: pair}
	m.order = append(m.order, canonical)
	m.pools[canonical] = pool
	return engine.AvailablePool{Venue: venue, Pair: engine.TradingPair{First: a, Second: b}}
}

func (m *market) AllActivePools() []engine.AvailablePool {
	m.snapshot++
	out := make([]engine.AvailablePool, len(m.order))
	copy(out, m.order)
	return out
}

func (m *market) pool(hop engine.AvailablePool) (uniswapv2.Pool, error) {
	p, ok := m.pools[hop.Canonical()]
	if !ok {
		return uniswapv2.Pool{}, fmt.Errorf("no pool %s", hop)
	}
	return p, nil
}

func (m *market) GetTargetAmount(hop engine.AvailablePool, supplyAmount *uint256.Int) (*uint256.Int, error) {
	p, err := m.pool(hop)
	if err != nil {
		return nil, err
	}
	return v2calc.GetAmountOut(supplyAmount, hop.SupplyToken(), hop.TargetToken(), p)
}

func (m *market) GetSupplyAmount(hop engine.AvailablePool, targetAmount *uint256.Int) (*uint256.Int, error) {
	p, err := m.pool(hop)
	if err != nil {
		return nil, err
	}
	return v2calc.GetAmountIn(targetAmount, hop.SupplyToken(), hop.TargetToken(), p)
}

type swapCall struct {
	exactTarget bool
	pool        engine.AvailablePool
	amount      *uint256.Int // supply for exact supply, target for exact target
	bound       *uint256.Int
}

var errHopFailed = errors.New("hop failed")

// recordingExecutor swaps against a market, recording every call. failAt
// makes the call with that index fail; -1 disables it.
type recordingExecutor struct {
	market *market
	calls  []swapCall
	failAt int
}

func newRecordingExecutor(m *market) *recordingExecutor {
	return &recordingExecutor{market: m, failAt: -1}
}

func (r *recordingExecutor) SwapWithExactSupply(_ common.Address, pool engine.AvailablePool, supplyAmount, minTargetAmount *uint256.Int) (*uint256.Int, error) {
	r.calls = append(r.calls, swapCall{pool: pool, amount: supplyAmount.Clone(), bound: minTargetAmount.Clone()})
	if len(r.calls)-1 == r.failAt {
		return nil, errHopFailed
	}
	p, err := r.market.pool(pool)
	if err != nil {
		return nil, err
	}
	out, next, err := v2calc.SimulateSwap(supplyAmount, pool.SupplyToken(), pool.TargetToken(), p)
	if err != nil {
		return nil, err
	}
	if out.Lt(minTargetAmount) {
		return nil, errHopFailed
	}
	r.market.pools[pool.Canonical()] = next
	return out, nil
}

func (r *recordingExecutor) SwapWithExactTarget(_ common.Address, pool engine.AvailablePool, targetAmount, maxSupplyAmount *uint256.Int) (*uint256.Int, error) {
	r.calls = append(r.calls, swapCall{exactTarget: true, pool: pool, amount: targetAmount.Clone(), bound: maxSupplyAmount.Clone()})
	if len(r.calls)-1 == r.failAt {
		return nil, errHopFailed
	}
	p, err := r.market.pool(pool)
	if err != nil {
		return nil, err
	}
	in, next, err := v2calc.SimulateSwapExactOut(targetAmount, pool.SupplyToken(), pool.TargetToken(), p)
	if err != nil {
		return nil, err
	}
	if in.Gt(maxSupplyAmount) {
		return nil, errHopFailed
	}
	r.market.pools[pool.Canonical()] = next
	return in, nil
}

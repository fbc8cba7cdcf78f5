package aggregator

import (
	"github.com/defistate/defistate-aggregator-go/bitset"
	"github.com/defistate/defistate-aggregator-go/engine"
	tokenpoolregistry "github.com/defistate/defistate-aggregator-go/protocols/tokenpoolregistry"
	"github.com/holiman/uint256"
)

// SearchOptions bound and instrument a single path search.
type SearchOptions struct {
	// HopLimit is exclusive: only paths with fewer hops are ever returned.
	HopLimit int
	// NoRepeatPools forbids a path from using the same pool twice, in either orientation.
	NoRepeatPools bool
	// Observer, if set, sees every scored candidate.
	Observer SearchObserver
}

// partialPath is one entry of a generation. Once recorded it is never modified;
// extending it allocates a new path.
type partialPath struct {
	hops Path
	used bitset.BitSet // snapshot pool indices; nil unless NoRepeatPools
}

func (p partialPath) last() engine.AvailablePool { return p.hops[len(p.hops)-1] }

// searchState carries the best candidate across generations.
type searchState struct {
	oracle    PricingOracle
	direction engine.Direction
	amount    *uint256.Int
	mode      Mode
	opts      SearchOptions

	bestPath   Path
	bestAmount *uint256.Int
}

// FindBestPath searches the pools of registry for the best path from dir.Supply
// to dir.Target. The registry is read exactly once; every candidate is priced
// against that snapshot. Generation i holds every path of i+1 hops that starts
// at dir.Supply, in discovery order. Generations are produced while their path
// length stays below opts.HopLimit. The second result is false if no complete
// path could be priced.
func FindBestPath(
	registry PoolRegistry,
	oracle PricingOracle,
	dir engine.Direction,
	amount *uint256.Int,
	mode Mode,
	opts SearchOptions,
) (RouteQuote, bool) {
	if opts.HopLimit < 2 || amount == nil || dir.Validate() != nil {
		return RouteQuote{}, false
	}
	// Buying nothing has no route; pricing it would still round the supply up to 1.
	if mode == ExactTarget && amount.IsZero() {
		return RouteQuote{}, false
	}

	index := tokenpoolregistry.NewTokenPoolRegistry(registry.AllActivePools())
	if !index.HasToken(dir.Supply) || !index.HasToken(dir.Target) {
		return RouteQuote{}, false
	}

	state := &searchState{
		oracle:    oracle,
		direction: dir,
		amount:    amount,
		mode:      mode,
		opts:      opts,
	}
	if mode == ExactSupply {
		// A path must yield strictly more than nothing to be worth taking.
		state.bestAmount = uint256.NewInt(0)
	}

	var poolCount uint64
	if opts.NoRepeatPools {
		poolCount = uint64(index.PoolCount())
	}

	// Generation 0: one hop out of the supply token.
	var generation []partialPath
	index.ForEachHopFrom(dir.Supply, func(hop tokenpoolregistry.Hop) {
		p := partialPath{hops: Path{hop.Pool}}
		if opts.NoRepeatPools {
			p.used = bitset.NewBitSet(poolCount).With(uint64(hop.PoolIndex))
		}
		state.consider(p)
		generation = append(generation, p)
	})

	for length := 2; length < opts.HopLimit && len(generation) > 0; length++ {
		next := make([]partialPath, 0, len(generation))
		for _, prev := range generation {
			index.ForEachHopFrom(prev.last().TargetToken(), func(hop tokenpoolregistry.Hop) {
				if prev.used != nil && prev.used.IsSet(uint64(hop.PoolIndex)) {
					return
				}
				p := extend(prev, hop)
				state.consider(p)
				next = append(next, p)
			})
		}
		generation = next
	}

	if state.bestPath == nil {
		return RouteQuote{}, false
	}
	return RouteQuote{Path: state.bestPath, Amount: state.bestAmount.Clone()}, true
}

func extend(prev partialPath, hop tokenpoolregistry.Hop) partialPath {
	hops := make(Path, len(prev.hops)+1)
	copy(hops, prev.hops)
	hops[len(prev.hops)] = hop.Pool

	p := partialPath{hops: hops}
	if prev.used != nil {
		p.used = prev.used.With(uint64(hop.PoolIndex))
	}
	return p
}

// consider scores p if it ends at the target token.
func (s *searchState) consider(p partialPath) {
	if p.last().TargetToken() != s.direction.Target {
		return
	}

	var (
		amount *uint256.Int
		err    error
	)
	switch s.mode {
	case ExactSupply:
		amount, err = EvaluateExactSupply(s.oracle, p.hops, s.amount)
	case ExactTarget:
		amount, err = EvaluateExactTarget(s.oracle, p.hops, s.amount)
	default:
		return
	}

	accepted := err == nil && s.improves(amount)
	if accepted {
		s.bestPath = p.hops
		s.bestAmount = amount
	}
	if s.opts.Observer != nil {
		if err != nil {
			amount = nil
		}
		s.opts.Observer(Candidate{Mode: s.mode, Path: p.hops, Amount: amount, Accepted: accepted})
	}
}

// improves reports whether amount strictly beats the current best. Ties keep the earlier path.
func (s *searchState) improves(amount *uint256.Int) bool {
	if s.mode == ExactSupply {
		return amount.Gt(s.bestAmount)
	}
	return s.bestAmount == nil || amount.Lt(s.bestAmount)
}

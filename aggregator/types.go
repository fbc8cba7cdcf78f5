package aggregator

import (
	"fmt"
	"strings"

	"github.com/defistate/defistate-aggregator-go/engine"
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

// PoolRegistry enumerates the pools currently open for trading. Order is not
// significant to correctness but must be stable for a given state, since ties
// between equally priced routes go to the one found first.
type PoolRegistry interface {
	AllActivePools() []engine.AvailablePool
}

// PricingOracle answers side-effect-free price queries for one hop.
// Any error means the hop cannot trade that amount.
type PricingOracle interface {
	// GetTargetAmount returns what the hop yields for supplyAmount of its supply token.
	GetTargetAmount(pool engine.AvailablePool, supplyAmount *uint256.Int) (*uint256.Int, error)
	// GetSupplyAmount returns what the hop requires to yield targetAmount of its target token.
	GetSupplyAmount(pool engine.AvailablePool, targetAmount *uint256.Int) (*uint256.Int, error)
}

// SwapExecutor applies single-hop swaps to pool reserves and the caller's balances.
type SwapExecutor interface {
	SwapWithExactSupply(caller common.Address, pool engine.AvailablePool, supplyAmount, minTargetAmount *uint256.Int) (*uint256.Int, error)
	SwapWithExactTarget(caller common.Address, pool engine.AvailablePool, targetAmount, maxSupplyAmount *uint256.Int) (*uint256.Int, error)
}

// Exchange is the AMM as seen from inside a scope.
type Exchange interface {
	PoolRegistry
	PricingOracle
	SwapExecutor
	// ValidToken reports whether the AMM recognizes token.
	ValidToken(token engine.TokenID) bool
}

// Environment hands out scopes over the AMM state. View scopes are read-only.
// Atomic scopes run one at a time; if fn returns an error every change made
// inside the scope is discarded.
type Environment interface {
	View(fn func(Exchange) error) error
	Atomic(fn func(Exchange) error) error
}

// Mode selects which end of a trade is fixed.
type Mode int

const (
	// ExactSupply fixes the amount supplied and maximizes the amount received.
	ExactSupply Mode = iota
	// ExactTarget fixes the amount received and minimizes the amount supplied.
	ExactTarget
)

func (m Mode) String() string {
	switch m {
	case ExactSupply:
		return "exact_supply"
	case ExactTarget:
		return "exact_target"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "exact_supply":
		return ExactSupply, nil
	case "exact_target":
		return ExactTarget, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if m != ExactSupply && m != ExactTarget {
		return nil, fmt.Errorf("unknown mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Path is an ordered sequence of hops. Each hop's Pair.First is the token it consumes.
type Path []engine.AvailablePool

// Source is the token the path consumes. It panics on an empty path.
func (p Path) Source() engine.TokenID { return p[0].SupplyToken() }

// Destination is the token the path produces. It panics on an empty path.
func (p Path) Destination() engine.TokenID { return p[len(p)-1].TargetToken() }

// Continuous reports whether every hop consumes the token the previous hop produced.
func (p Path) Continuous() bool {
	for i := 1; i < len(p); i++ {
		if p[i-1].TargetToken() != p[i].SupplyToken() {
			return false
		}
	}
	return true
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, hop := range p {
		parts[i] = hop.String()
	}
	return strings.Join(parts, " | ")
}

// RouteQuote is the best path found by a search and the amount on its free end:
// the target amount for ExactSupply, the supply amount for ExactTarget.
type RouteQuote struct {
	Path   Path         `json:"path"`
	Amount *uint256.Int `json:"amount"`
}

// Candidate is a complete path scored during a search.
type Candidate struct {
	Mode     Mode
	Path     Path
	Amount   *uint256.Int // nil if the path could not be priced
	Accepted bool         // the candidate became the new best
}

// SearchObserver is notified of every scored candidate, in the order they are scored.
type SearchObserver func(Candidate)

// SwapEvent summarizes one successful multi-hop swap.
type SwapEvent struct {
	Trader       common.Address `json:"trader"`
	Mode         Mode           `json:"mode"`
	SupplyToken  engine.TokenID `json:"supplyToken"`
	TargetToken  engine.TokenID `json:"targetToken"`
	SupplyAmount *uint256.Int   `json:"supplyAmount"`
	TargetAmount *uint256.Int   `json:"targetAmount"`
	Path         Path           `json:"path"`
}

package aggregator

import (
	"errors"
	"fmt"
	"time"

	"github.com/defistate/defistate-aggregator-go/engine"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
)

// Config holds the configuration for the Aggregator.
type Config struct {
	// Environment provides the scopes every request runs in.
	Environment Environment
	// HopLimit bounds path length: returned paths are strictly shorter.
	HopLimit int
	// NoRepeatPools forbids using one pool twice within a path.
	NoRepeatPools bool
	// Observer, if set, sees every candidate scored by every search.
	Observer SearchObserver
	Logger   Logger
	// Registry receives the aggregator metrics. A private registry is used if nil.
	Registry prometheus.Registerer
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.Environment == nil {
		return errors.New("config: Environment is required")
	}
	if c.HopLimit < 1 {
		return fmt.Errorf("config: %w, got %d", ErrInvalidHopLimit, c.HopLimit)
	}
	if c.Logger == nil {
		return errors.New("config: Logger is required")
	}
	return nil
}

// Aggregator finds the best path through the AMM's pools for a trade and
// executes it as one all-or-nothing operation.
type Aggregator struct {
	env           Environment
	hopLimit      int
	noRepeatPools bool
	observer      SearchObserver
	logger        Logger
	metrics       *Metrics

	swapFeed event.Feed
}

// New creates an Aggregator from cfg.
func New(cfg Config) (*Aggregator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.HopLimit == 1 {
		cfg.Logger.Warn("hop limit 1 admits no path; every search will fail", "hopLimit", cfg.HopLimit)
	}
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Aggregator{
		env:           cfg.Environment,
		hopLimit:      cfg.HopLimit,
		noRepeatPools: cfg.NoRepeatPools,
		observer:      cfg.Observer,
		logger:        cfg.Logger,
		metrics:       NewMetrics(reg),
	}, nil
}

// HopLimit returns the configured exclusive bound on path length.
func (a *Aggregator) HopLimit() int { return a.hopLimit }

// SubscribeSwaps delivers a SwapEvent for every successful swap.
func (a *Aggregator) SubscribeSwaps(ch chan<- SwapEvent) event.Subscription {
	return a.swapFeed.Subscribe(ch)
}

// Quote returns the best path for trading amount from supply to target without
// changing any state. For ExactSupply the quote amount is the expected target
// amount; for ExactTarget it is the required supply amount.
func (a *Aggregator) Quote(supply, target engine.TokenID, amount *uint256.Int, mode Mode) (RouteQuote, error) {
	dir := engine.Direction{Supply: supply, Target: target}
	if err := a.checkRequest(dir, amount); err != nil {
		return RouteQuote{}, err
	}

	var quote RouteQuote
	err := a.env.View(func(ex Exchange) error {
		q, err := a.bestPath(ex, dir, amount, mode)
		if err != nil {
			return err
		}
		quote = q
		return nil
	})
	return quote, err
}

// SwapWithExactSupply sells exactly supplyAmount of supply for as much target
// as the best path yields. The request is rejected before anything executes
// unless the quoted output is strictly greater than minTargetAmount. The final
// hop enforces minTargetAmount again against live reserves.
func (a *Aggregator) SwapWithExactSupply(
	caller common.Address,
	supply, target engine.TokenID,
	supplyAmount, minTargetAmount *uint256.Int,
) (SwapEvent, error) {
	dir := engine.Direction{Supply: supply, Target: target}
	if minTargetAmount == nil {
		return a.reject(ExactSupply, ErrInvalidAmount)
	}
	if err := a.checkRequest(dir, supplyAmount); err != nil {
		return a.reject(ExactSupply, err)
	}

	var ev SwapEvent
	err := a.env.Atomic(func(ex Exchange) error {
		quote, err := a.bestPath(ex, dir, supplyAmount, ExactSupply)
		if err != nil {
			return err
		}
		if !quote.Amount.Gt(minTargetAmount) {
			return fmt.Errorf("%w: best %s, minimum %s", ErrBelowMinimumTarget, quote.Amount.Dec(), minTargetAmount.Dec())
		}

		exec, err := ExecuteExactSupply(ex, caller, quote.Path, supplyAmount, minTargetAmount)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutionFailed, err)
		}
		ev = a.newSwapEvent(caller, ExactSupply, dir, exec, quote.Path)
		return nil
	})
	if err != nil {
		return a.reject(ExactSupply, err)
	}
	a.emit(ev)
	return ev, nil
}

// SwapWithExactTarget buys exactly targetAmount of target for as little supply
// as the best path requires. The request is rejected before anything executes
// unless the quoted supply is strictly less than maxSupplyAmount.
func (a *Aggregator) SwapWithExactTarget(
	caller common.Address,
	supply, target engine.TokenID,
	targetAmount, maxSupplyAmount *uint256.Int,
) (SwapEvent, error) {
	dir := engine.Direction{Supply: supply, Target: target}
	if maxSupplyAmount == nil {
		return a.reject(ExactTarget, ErrInvalidAmount)
	}
	if err := a.checkRequest(dir, targetAmount); err != nil {
		return a.reject(ExactTarget, err)
	}

	var ev SwapEvent
	err := a.env.Atomic(func(ex Exchange) error {
		quote, err := a.bestPath(ex, dir, targetAmount, ExactTarget)
		if err != nil {
			return err
		}
		if !quote.Amount.Lt(maxSupplyAmount) {
			return fmt.Errorf("%w: best %s, maximum %s", ErrAboveMaximumSupply, quote.Amount.Dec(), maxSupplyAmount.Dec())
		}

		exec, err := ExecuteExactTarget(ex, ex, caller, quote.Path, targetAmount, maxSupplyAmount)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutionFailed, err)
		}
		ev = a.newSwapEvent(caller, ExactTarget, dir, exec, quote.Path)
		return nil
	})
	if err != nil {
		return a.reject(ExactTarget, err)
	}
	a.emit(ev)
	return ev, nil
}

func (a *Aggregator) checkRequest(dir engine.Direction, amount *uint256.Int) error {
	if err := dir.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCurrencyID, err)
	}
	if amount == nil {
		return ErrInvalidAmount
	}
	return nil
}

// bestPath runs one search against ex. The caller's scope fixes the snapshot.
func (a *Aggregator) bestPath(ex Exchange, dir engine.Direction, amount *uint256.Int, mode Mode) (RouteQuote, error) {
	for _, token := range []engine.TokenID{dir.Supply, dir.Target} {
		if !ex.ValidToken(token) {
			return RouteQuote{}, fmt.Errorf("%w: unknown token %s", ErrInvalidCurrencyID, token.Hex())
		}
	}

	label := mode.String()
	candidates := 0
	opts := SearchOptions{
		HopLimit:      a.hopLimit,
		NoRepeatPools: a.noRepeatPools,
		Observer: func(c Candidate) {
			candidates++
			if a.observer != nil {
				a.observer(c)
			}
		},
	}

	start := time.Now()
	quote, ok := FindBestPath(ex, ex, dir, amount, mode, opts)
	a.metrics.searchDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	a.metrics.candidatesEvaluated.WithLabelValues(label).Add(float64(candidates))

	a.logger.Debug("path search finished",
		"mode", label,
		"direction", dir.Pair().String(),
		"amount", amount.Dec(),
		"candidates", candidates,
		"found", ok,
	)
	if !ok {
		return RouteQuote{}, ErrNoPossibleTradingPath
	}
	a.mustBeValidRoute(quote, dir)
	return quote, nil
}

// mustBeValidRoute panics if the search returned a path it can never produce.
func (a *Aggregator) mustBeValidRoute(quote RouteQuote, dir engine.Direction) {
	switch {
	case len(quote.Path) == 0:
		panic("aggregator: search returned an empty path")
	case len(quote.Path) >= a.hopLimit:
		panic(fmt.Sprintf("aggregator: search returned %d hops with hop limit %d", len(quote.Path), a.hopLimit))
	case !quote.Path.Continuous():
		panic(fmt.Sprintf("aggregator: search returned a broken path %s", quote.Path))
	case quote.Path.Source() != dir.Supply || quote.Path.Destination() != dir.Target:
		panic(fmt.Sprintf("aggregator: search returned path %s for %s", quote.Path, dir.Pair()))
	case quote.Amount == nil:
		panic("aggregator: search returned no amount")
	}
}

func (a *Aggregator) newSwapEvent(caller common.Address, mode Mode, dir engine.Direction, exec Execution, path Path) SwapEvent {
	return SwapEvent{
		Trader:       caller,
		Mode:         mode,
		SupplyToken:  dir.Supply,
		TargetToken:  dir.Target,
		SupplyAmount: exec.SupplyAmount,
		TargetAmount: exec.TargetAmount,
		Path:         append(Path(nil), path...),
	}
}

func (a *Aggregator) emit(ev SwapEvent) {
	a.metrics.swapsTotal.WithLabelValues(ev.Mode.String(), resultSuccess).Inc()
	a.logger.Info("swap executed",
		"mode", ev.Mode.String(),
		"trader", ev.Trader.Hex(),
		"supplyToken", ev.SupplyToken.Hex(),
		"targetToken", ev.TargetToken.Hex(),
		"supplyAmount", ev.SupplyAmount.Dec(),
		"targetAmount", ev.TargetAmount.Dec(),
		"hops", len(ev.Path),
	)
	a.swapFeed.Send(ev)
}

func (a *Aggregator) reject(mode Mode, err error) (SwapEvent, error) {
	result := resultFailed
	switch {
	case errors.Is(err, ErrInvalidCurrencyID), errors.Is(err, ErrInvalidAmount):
		result = resultInvalid
	case errors.Is(err, ErrNoPossibleTradingPath):
		result = resultNoPath
	case errors.Is(err, ErrExecutionFailed):
		result = resultFailed
	case errors.Is(err, ErrBelowMinimumTarget), errors.Is(err, ErrAboveMaximumSupply):
		result = resultSlippage
	}
	a.metrics.swapsTotal.WithLabelValues(mode.String(), result).Inc()
	a.logger.Warn("swap rejected", "mode", mode.String(), "result", result, "error", err)
	return SwapEvent{}, err
}

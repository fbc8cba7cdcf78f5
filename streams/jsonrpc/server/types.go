package server

import (
	"github.com/defistate/defistate-aggregator-go/aggregator"
	"github.com/defistate/defistate-aggregator-go/engine"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// QuoteArgs are the parameters of router_quote. Amount is the supply amount
// for exact_supply and the target amount for exact_target.
type QuoteArgs struct {
	Supply common.Address  `json:"supply"`
	Target common.Address  `json:"target"`
	Amount *hexutil.U256   `json:"amount"`
	Mode   aggregator.Mode `json:"mode"`
}

// ExactSupplyArgs are the parameters of router_swapWithExactSupply.
type ExactSupplyArgs struct {
	Caller          common.Address `json:"caller"`
	Supply          common.Address `json:"supply"`
	Target          common.Address `json:"target"`
	SupplyAmount    *hexutil.U256  `json:"supplyAmount"`
	MinTargetAmount *hexutil.U256  `json:"minTargetAmount"`
}

// ExactTargetArgs are the parameters of router_swapWithExactTarget.
type ExactTargetArgs struct {
	Caller          common.Address `json:"caller"`
	Supply          common.Address `json:"supply"`
	Target          common.Address `json:"target"`
	TargetAmount    *hexutil.U256  `json:"targetAmount"`
	MaxSupplyAmount *hexutil.U256  `json:"maxSupplyAmount"`
}

// Quote is the wire form of aggregator.RouteQuote.
type Quote struct {
	Mode   aggregator.Mode        `json:"mode"`
	Path   []engine.AvailablePool `json:"path"`
	Amount *hexutil.U256          `json:"amount"`
}

// Swap is the wire form of aggregator.SwapEvent. It is both the result of a
// swap call and the payload of a swap notification.
type Swap struct {
	Trader       common.Address         `json:"trader"`
	Mode         aggregator.Mode        `json:"mode"`
	SupplyToken  common.Address         `json:"supplyToken"`
	TargetToken  common.Address         `json:"targetToken"`
	SupplyAmount *hexutil.U256          `json:"supplyAmount"`
	TargetAmount *hexutil.U256          `json:"targetAmount"`
	Path         []engine.AvailablePool `json:"path"`
}

// Event converts the notification back into the aggregator's form.
func (s Swap) Event() aggregator.SwapEvent {
	return aggregator.SwapEvent{
		Trader:       s.Trader,
		Mode:         s.Mode,
		SupplyToken:  s.SupplyToken,
		TargetToken:  s.TargetToken,
		SupplyAmount: Amount(s.SupplyAmount),
		TargetAmount: Amount(s.TargetAmount),
		Path:         aggregator.Path(s.Path),
	}
}

func newQuote(mode aggregator.Mode, q aggregator.RouteQuote) Quote {
	return Quote{
		Mode:   mode,
		Path:   append([]engine.AvailablePool(nil), q.Path...),
		Amount: Hex(q.Amount),
	}
}

func newSwap(ev aggregator.SwapEvent) Swap {
	return Swap{
		Trader:       ev.Trader,
		Mode:         ev.Mode,
		SupplyToken:  ev.SupplyToken,
		TargetToken:  ev.TargetToken,
		SupplyAmount: Hex(ev.SupplyAmount),
		TargetAmount: Hex(ev.TargetAmount),
		Path:         append([]engine.AvailablePool(nil), ev.Path...),
	}
}

// Hex returns a wire copy of x. A nil amount stays nil.
func Hex(x *uint256.Int) *hexutil.U256 {
	if x == nil {
		return nil
	}
	return (*hexutil.U256)(x.Clone())
}

// Amount returns the uint256 view of a wire amount. A nil amount stays nil.
func Amount(h *hexutil.U256) *uint256.Int {
	if h == nil {
		return nil
	}
	return (*uint256.Int)(h)
}

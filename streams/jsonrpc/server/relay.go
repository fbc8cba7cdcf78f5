package server

import (
	"sync/atomic"

	"github.com/defistate/defistate-aggregator-go/aggregator"
	"github.com/ethereum/go-ethereum/common"
)

// swapRelay sits between the swap feed and one subscriber. The feed side
// never waits on the subscriber: an event that finds the queue full is dropped.
type swapRelay struct {
	feed    chan aggregator.SwapEvent
	queue   chan aggregator.SwapEvent
	trader  *common.Address
	dropped atomic.Uint64
}

func newSwapRelay(size int, trader *common.Address) *swapRelay {
	return &swapRelay{
		feed:   make(chan aggregator.SwapEvent, size),
		queue:  make(chan aggregator.SwapEvent, size),
		trader: trader,
	}
}

// run moves events from feed to queue until quit is closed. onDrop receives
// the running total of dropped events.
func (r *swapRelay) run(quit <-chan struct{}, onDrop func(total uint64)) {
	for {
		select {
		case ev := <-r.feed:
			if r.trader != nil && ev.Trader != *r.trader {
				continue
			}
			select {
			case r.queue <- ev:
			default:
				onDrop(r.dropped.Add(1))
			}
		case <-quit:
			return
		}
	}
}

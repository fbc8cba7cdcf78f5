package main

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/defistate/defistate-aggregator-go/aggregator"
	"github.com/defistate/defistate-aggregator-go/engine"
	"github.com/defistate/defistate-aggregator-go/protocols/tokenregistry"
	"github.com/ethereum/go-ethereum/common"
)

// SwapLog is a thread-safe window over the most recent swaps seen on the stream.
type SwapLog struct {
	mu    sync.RWMutex
	swaps []aggregator.SwapEvent
	total uint64
	limit int
}

func NewSwapLog(limit int) *SwapLog {
	return &SwapLog{limit: limit}
}

func (l *SwapLog) Add(ev aggregator.SwapEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.swaps = append(l.swaps, ev)
	if len(l.swaps) > l.limit {
		l.swaps = slices.Delete(l.swaps, 0, len(l.swaps)-l.limit)
	}
	l.total++
}

// Recent returns the retained swaps, newest first, and how many swaps were
// ever added.
func (l *SwapLog) Recent() ([]aggregator.SwapEvent, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := slices.Clone(l.swaps)
	slices.Reverse(out)
	return out, l.total
}

// tokenBook resolves user input against the router's token registry.
type tokenBook struct {
	tokens []tokenregistry.Token
	byAddr map[common.Address]tokenregistry.Token
}

func newTokenBook(tokens []tokenregistry.Token) *tokenBook {
	b := &tokenBook{
		tokens: tokens,
		byAddr: make(map[common.Address]tokenregistry.Token, len(tokens)),
	}
	for _, t := range tokens {
		b.byAddr[t.Address] = t
	}
	return b
}

// resolve accepts a symbol, matched case-insensitively, or a listed address.
func (b *tokenBook) resolve(input string) (tokenregistry.Token, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return tokenregistry.Token{}, fmt.Errorf("empty input")
	}
	if common.IsHexAddress(input) {
		if t, ok := b.byAddr[common.HexToAddress(input)]; ok {
			return t, nil
		}
		return tokenregistry.Token{}, fmt.Errorf("token address not found in registry")
	}
	for _, t := range b.tokens {
		if strings.EqualFold(t.Symbol, input) {
			return t, nil
		}
	}
	return tokenregistry.Token{}, fmt.Errorf("unknown token %q", input)
}

func (b *tokenBook) symbol(addr common.Address) string {
	if t, ok := b.byAddr[addr]; ok && t.Symbol != "" {
		return t.Symbol
	}
	return addr.Hex()[:10] + "..."
}

func (b *tokenBook) decimals(addr common.Address) uint8 {
	return b.byAddr[addr].Decimals
}

// revisitedTokens lists the tokens a path passes through more than once.
func revisitedTokens(path aggregator.Path) []engine.TokenID {
	if len(path) == 0 {
		return nil
	}
	seen := mapset.NewThreadUnsafeSet(path.Source())
	var repeats []engine.TokenID
	for _, hop := range path {
		if !seen.Add(hop.TargetToken()) {
			repeats = append(repeats, hop.TargetToken())
		}
	}
	return repeats
}

package indexer

import (
	"errors"
	"fmt"
	"strings"

	tokenregistry "github.com/defistate/defistate-aggregator-go/protocols/tokenregistry"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/common"
)

var ErrDuplicateToken = errors.New("duplicate token")

// Indexer is a concrete implementation of the IndexedTokenSystem factory.
type Indexer struct{}

// New creates a new Indexer.
func New() *Indexer {
	return &Indexer{}
}

// Index creates an indexed tokenregistry system from a raw slice of tokens.
func (i *Indexer) Index(tokens []tokenregistry.Token) (IndexedTokenSystem, error) {
	return NewIndexableTokenSystem(tokens)
}

// IndexableTokenSystem provides fast, indexed access to tokenregistry data.
type IndexableTokenSystem struct {
	members   mapset.Set[common.Address]
	byAddress map[common.Address]tokenregistry.Token
	bySymbol  map[string]tokenregistry.Token
	all       []tokenregistry.Token
}

// NewIndexableTokenSystem creates a new indexed tokenregistry system from a raw slice.
// Symbols are matched case-insensitively; a repeated address or symbol is rejected.
func NewIndexableTokenSystem(tokens []tokenregistry.Token) (*IndexableTokenSystem, error) {
	members := mapset.NewThreadUnsafeSetWithSize[common.Address](len(tokens))
	byAddress := make(map[common.Address]tokenregistry.Token, len(tokens))
	bySymbol := make(map[string]tokenregistry.Token, len(tokens))

	for _, t := range tokens {
		if !members.Add(t.Address) {
			return nil, fmt.Errorf("%w: address %s", ErrDuplicateToken, t.Address.Hex())
		}
		symbol := strings.ToUpper(t.Symbol)
		if _, exists := bySymbol[symbol]; exists && symbol != "" {
			return nil, fmt.Errorf("%w: symbol %s", ErrDuplicateToken, t.Symbol)
		}
		byAddress[t.Address] = t
		if symbol != "" {
			bySymbol[symbol] = t
		}
	}

	all := make([]tokenregistry.Token, len(tokens))
	copy(all, tokens)

	return &IndexableTokenSystem{
		members:   members,
		byAddress: byAddress,
		bySymbol:  bySymbol,
		all:       all,
	}, nil
}

// GetByAddress retrieves a token by its contract address.
func (its *IndexableTokenSystem) GetByAddress(address common.Address) (tokenregistry.Token, bool) {
	t, ok := its.byAddress[address]
	return t, ok
}

// GetBySymbol retrieves a token by its symbol, ignoring case.
func (its *IndexableTokenSystem) GetBySymbol(symbol string) (tokenregistry.Token, bool) {
	t, ok := its.bySymbol[strings.ToUpper(symbol)]
	return t, ok
}

// Contains reports whether address is a registered token.
func (its *IndexableTokenSystem) Contains(address common.Address) bool {
	return its.members.Contains(address)
}

// All returns a defensive copy of the slice of all tokens in the system.
func (its *IndexableTokenSystem) All() []tokenregistry.Token {
	allCopy := make([]tokenregistry.Token, len(its.all))
	copy(allCopy, its.all)
	return allCopy
}

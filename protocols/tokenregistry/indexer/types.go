package indexer

import (
	tokenregistry "github.com/defistate/defistate-aggregator-go/protocols/tokenregistry"
	"github.com/ethereum/go-ethereum/common"
)

// IndexedTokenSystem defines the methods for accessing indexed tokenregistry data.
type IndexedTokenSystem interface {
	GetByAddress(address common.Address) (tokenregistry.Token, bool)
	GetBySymbol(symbol string) (tokenregistry.Token, bool)
	Contains(address common.Address) bool
	All() []tokenregistry.Token
}

package indexer

import (
	"github.com/defistate/defistate-aggregator-go/engine"
	poolregistry "github.com/defistate/defistate-aggregator-go/protocols/poolregistry"
)

// IndexedPoolRegistry defines the methods for accessing indexed pool registry data.
type IndexedPoolRegistry interface {
	GetByID(id uint64) (poolregistry.Pool, bool)
	GetByPoolKey(key poolregistry.PoolKey) (poolregistry.Pool, bool)
	GetByAvailable(pool engine.AvailablePool) (poolregistry.Pool, bool)
	All() []poolregistry.Pool
	AllActivePools() []engine.AvailablePool
}

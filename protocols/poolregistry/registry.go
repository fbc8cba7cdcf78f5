package poolregistry

import (
	"errors"
	"fmt"

	"github.com/defistate/defistate-aggregator-go/engine"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrDuplicatePool = errors.New("pool already registered")
	ErrPoolNotFound  = errors.New("pool not found")
)

// PoolKey identifies a listing independently of its numeric ID:
// keccak256(venue || pair.First || pair.Second) over the canonical pair.
type PoolKey [32]byte

// NewPoolKey derives the key of the venue/pair listing. Orientation of pair does not matter.
func NewPoolKey(venue engine.VenueID, pair engine.TradingPair) PoolKey {
	canonical := pair.Canonical()
	return PoolKey(crypto.Keccak256Hash([]byte(venue), canonical.First.Bytes(), canonical.Second.Bytes()))
}

func (k PoolKey) Hex() string { return hexutil.Encode(k[:]) }

func (k PoolKey) String() string { return k.Hex() }

// MarshalText encodes the key as 0x-prefixed hex.
func (k PoolKey) MarshalText() ([]byte, error) {
	return hexutil.Bytes(k[:]).MarshalText()
}

// UnmarshalText decodes a 0x-prefixed hex key.
func (k *PoolKey) UnmarshalText(input []byte) error {
	var h common.Hash
	if err := h.UnmarshalText(input); err != nil {
		return err
	}
	*k = PoolKey(h)
	return nil
}

// Pool represents a single listing: one venue trading one canonical pair.
type Pool struct {
	ID    uint64             `json:"id"`
	Key   PoolKey            `json:"key"`
	Venue engine.VenueID     `json:"venue"`
	Pair  engine.TradingPair `json:"pair"`
}

// NewPool builds a listing with its derived key.
func NewPool(id uint64, venue engine.VenueID, pair engine.TradingPair) Pool {
	return Pool{
		ID:    id,
		Key:   NewPoolKey(venue, pair),
		Venue: venue,
		Pair:  pair.Canonical(),
	}
}

// Available returns the listing in the router's vocabulary, canonically oriented.
func (p Pool) Available() engine.AvailablePool {
	return engine.AvailablePool{Venue: p.Venue, Pair: p.Pair}
}

func (p Pool) String() string {
	return fmt.Sprintf("#%d %s", p.ID, p.Available())
}

// PoolRegistry represents the complete set of listed pools, ordered by ID.
type PoolRegistry struct {
	Pools []Pool `json:"pools"`
}

package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/defistate/defistate-aggregator-go/amm"
	"github.com/defistate/defistate-aggregator-go/engine"
	"github.com/defistate/defistate-aggregator-go/protocols/tokenregistry"
	uniswapv2 "github.com/defistate/defistate-aggregator-go/protocols/uniswapv2"
	uniswapv3 "github.com/defistate/defistate-aggregator-go/protocols/uniswapv3"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListen   = "127.0.0.1:8545"
	DefaultHopLimit = 3

	EnvListen   = "ROUTERD_LISTEN"
	EnvHopLimit = "ROUTERD_HOP_LIMIT"
)

type RouterConfig struct {
	Listen         string                `yaml:"listen"`
	HopLimit       int                   `yaml:"hop_limit"`
	NoRepeatPools  bool                  `yaml:"no_repeat_pools"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	Tokens         []tokenregistry.Token `yaml:"tokens"`
	Pools          []PoolConfig          `yaml:"pools"`
	Accounts       []AccountConfig       `yaml:"accounts"`
}

// PoolConfig seeds one pool. Tokens are given by symbol or address, amounts
// as decimal or 0x-prefixed hex strings. Constant-product pools use the
// reserve fields, concentrated-liquidity pools the liquidity and price fields.
// A delisted pool keeps its venue state but is not traded.
type PoolConfig struct {
	Venue        engine.VenueID `yaml:"venue"`
	Token0       string         `yaml:"token0"`
	Token1       string         `yaml:"token1"`
	Reserve0     string         `yaml:"reserve0"`
	Reserve1     string         `yaml:"reserve1"`
	FeeBps       uint16         `yaml:"fee_bps"`
	Fee          uint32         `yaml:"fee"`
	Liquidity    string         `yaml:"liquidity"`
	SqrtPriceX96 string         `yaml:"sqrt_price_x96"`
	Delisted     bool           `yaml:"delisted"`
}

// AccountConfig funds one account. Balances are keyed by token symbol or address.
type AccountConfig struct {
	Address  common.Address    `yaml:"address"`
	Balances map[string]string `yaml:"balances"`
}

// Deposit is one resolved account funding.
type Deposit struct {
	Account common.Address
	Token   common.Address
	Amount  *uint256.Int
}

// LoadConfig reads a configuration file from the given path, unmarshals it
// into a RouterConfig and applies environment overrides and defaults.
func LoadConfig(path string) (*RouterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg RouterConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *RouterConfig) applyEnv() error {
	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(EnvHopLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHopLimit, err)
		}
		c.HopLimit = n
	}
	return nil
}

func (c *RouterConfig) applyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.HopLimit == 0 {
		c.HopLimit = DefaultHopLimit
	}
}

func (c *RouterConfig) validate() error {
	if len(c.Tokens) == 0 {
		return errors.New("config: at least one token is required")
	}
	if c.HopLimit < 1 {
		return fmt.Errorf("config: hop_limit must be positive, got %d", c.HopLimit)
	}
	symbols := make(map[string]bool, len(c.Tokens))
	for _, t := range c.Tokens {
		if t.Symbol == "" {
			return fmt.Errorf("config: token %s has no symbol", t.Address.Hex())
		}
		key := strings.ToUpper(t.Symbol)
		if symbols[key] {
			return fmt.Errorf("config: duplicate token symbol %s", t.Symbol)
		}
		symbols[key] = true
	}
	return nil
}

// ResolveToken finds a configured token by symbol, case-insensitively, or by address.
func (c *RouterConfig) ResolveToken(ref string) (common.Address, error) {
	if common.IsHexAddress(ref) {
		addr := common.HexToAddress(ref)
		for _, t := range c.Tokens {
			if t.Address == addr {
				return addr, nil
			}
		}
		return common.Address{}, fmt.Errorf("unknown token %s", ref)
	}
	for _, t := range c.Tokens {
		if strings.EqualFold(t.Symbol, ref) {
			return t.Address, nil
		}
	}
	return common.Address{}, fmt.Errorf("unknown token %q", ref)
}

// PoolStates resolves every configured pool into venue state ready for listing.
func (c *RouterConfig) PoolStates() ([]amm.PoolState, error) {
	out := make([]amm.PoolState, 0, len(c.Pools))
	for i, p := range c.Pools {
		ps, err := c.poolState(p)
		if err != nil {
			return nil, fmt.Errorf("pool %d: %w", i, err)
		}
		out = append(out, ps)
	}
	return out, nil
}

func (c *RouterConfig) poolState(p PoolConfig) (amm.PoolState, error) {
	token0, err := c.ResolveToken(p.Token0)
	if err != nil {
		return amm.PoolState{}, err
	}
	token1, err := c.ResolveToken(p.Token1)
	if err != nil {
		return amm.PoolState{}, err
	}

	switch p.Venue {
	case engine.UniswapV2:
		reserve0, err := parseAmount("reserve0", p.Reserve0)
		if err != nil {
			return amm.PoolState{}, err
		}
		reserve1, err := parseAmount("reserve1", p.Reserve1)
		if err != nil {
			return amm.PoolState{}, err
		}
		// Reserves follow their tokens into canonical order.
		if token1.Cmp(token0) < 0 {
			token0, token1 = token1, token0
			reserve0, reserve1 = reserve1, reserve0
		}
		return amm.PoolState{UniswapV2: &uniswapv2.Pool{
			Token0:   token0,
			Token1:   token1,
			Reserve0: reserve0,
			Reserve1: reserve1,
			FeeBps:   p.FeeBps,
		}}, nil

	case engine.UniswapV3:
		// The price is quoted as token1 per token0, so the order cannot be flipped here.
		if token1.Cmp(token0) <= 0 {
			return amm.PoolState{}, fmt.Errorf("token0 %s must sort before token1 %s", p.Token0, p.Token1)
		}
		liquidity, err := parseAmount("liquidity", p.Liquidity)
		if err != nil {
			return amm.PoolState{}, err
		}
		sqrtPrice, err := parseAmount("sqrt_price_x96", p.SqrtPriceX96)
		if err != nil {
			return amm.PoolState{}, err
		}
		return amm.PoolState{UniswapV3: &uniswapv3.Pool{
			Token0:       token0,
			Token1:       token1,
			Fee:          p.Fee,
			Liquidity:    liquidity,
			SqrtPriceX96: sqrtPrice,
		}}, nil
	}
	return amm.PoolState{}, fmt.Errorf("%w: %q", amm.ErrUnknownVenue, p.Venue)
}

// Deposits resolves every configured account balance.
func (c *RouterConfig) Deposits() ([]Deposit, error) {
	var out []Deposit
	for _, acct := range c.Accounts {
		refs := slices.Sorted(maps.Keys(acct.Balances))
		for _, ref := range refs {
			raw := acct.Balances[ref]
			token, err := c.ResolveToken(ref)
			if err != nil {
				return nil, fmt.Errorf("account %s: %w", acct.Address.Hex(), err)
			}
			amount, err := parseAmount(ref, raw)
			if err != nil {
				return nil, fmt.Errorf("account %s: %w", acct.Address.Hex(), err)
			}
			out = append(out, Deposit{Account: acct.Address, Token: token, Amount: amount})
		}
	}
	return out, nil
}

func parseAmount(field, s string) (*uint256.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("%s is required", field)
	}
	var (
		v   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") {
		v, err = uint256.FromHex(s)
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}

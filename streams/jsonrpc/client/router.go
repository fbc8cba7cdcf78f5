package client

import (
	"context"
	"errors"

	"github.com/defistate/defistate-aggregator-go/aggregator"
	"github.com/defistate/defistate-aggregator-go/amm"
	"github.com/defistate/defistate-aggregator-go/engine"
	"github.com/defistate/defistate-aggregator-go/protocols/tokenregistry"
	"github.com/defistate/defistate-aggregator-go/streams/jsonrpc/server"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"
)

// RouterClient calls the router_* methods of a routerd instance. Routing
// failures come back matching the aggregator's sentinel errors.
type RouterClient struct {
	c *rpc.Client
}

// Dial connects to a routerd endpoint over HTTP or websocket.
func Dial(ctx context.Context, url string) (*RouterClient, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return NewRouterClient(c), nil
}

// NewRouterClient wraps an established RPC connection.
func NewRouterClient(c *rpc.Client) *RouterClient {
	return &RouterClient{c: c}
}

// Close closes the underlying connection.
func (rc *RouterClient) Close() {
	rc.c.Close()
}

// Quote returns the best path for trading amount from supply to target.
func (rc *RouterClient) Quote(ctx context.Context, supply, target engine.TokenID, amount *uint256.Int, mode aggregator.Mode) (aggregator.RouteQuote, error) {
	var q server.Quote
	args := server.QuoteArgs{Supply: supply, Target: target, Amount: server.Hex(amount), Mode: mode}
	if err := rc.call(ctx, &q, "quote", args); err != nil {
		return aggregator.RouteQuote{}, err
	}
	return aggregator.RouteQuote{Path: aggregator.Path(q.Path), Amount: server.Amount(q.Amount)}, nil
}

// SwapWithExactSupply sells supplyAmount of supply on behalf of caller.
func (rc *RouterClient) SwapWithExactSupply(
	ctx context.Context,
	caller common.Address,
	supply, target engine.TokenID,
	supplyAmount, minTargetAmount *uint256.Int,
) (aggregator.SwapEvent, error) {
	var s server.Swap
	args := server.ExactSupplyArgs{
		Caller:          caller,
		Supply:          supply,
		Target:          target,
		SupplyAmount:    server.Hex(supplyAmount),
		MinTargetAmount: server.Hex(minTargetAmount),
	}
	if err := rc.call(ctx, &s, "swapWithExactSupply", args); err != nil {
		return aggregator.SwapEvent{}, err
	}
	return s.Event(), nil
}

// SwapWithExactTarget buys targetAmount of target on behalf of caller.
func (rc *RouterClient) SwapWithExactTarget(
	ctx context.Context,
	caller common.Address,
	supply, target engine.TokenID,
	targetAmount, maxSupplyAmount *uint256.Int,
) (aggregator.SwapEvent, error) {
	var s server.Swap
	args := server.ExactTargetArgs{
		Caller:          caller,
		Supply:          supply,
		Target:          target,
		TargetAmount:    server.Hex(targetAmount),
		MaxSupplyAmount: server.Hex(maxSupplyAmount),
	}
	if err := rc.call(ctx, &s, "swapWithExactTarget", args); err != nil {
		return aggregator.SwapEvent{}, err
	}
	return s.Event(), nil
}

func (rc *RouterClient) Tokens(ctx context.Context) ([]tokenregistry.Token, error) {
	var tokens []tokenregistry.Token
	err := rc.call(ctx, &tokens, "tokens")
	return tokens, err
}

func (rc *RouterClient) Pools(ctx context.Context) ([]amm.PoolInfo, error) {
	var pools []amm.PoolInfo
	err := rc.call(ctx, &pools, "pools")
	return pools, err
}

func (rc *RouterClient) Balance(ctx context.Context, account common.Address, token engine.TokenID) (*uint256.Int, error) {
	var balance *hexutil.U256
	if err := rc.call(ctx, &balance, "balance", account, token); err != nil {
		return nil, err
	}
	return server.Amount(balance), nil
}

func (rc *RouterClient) Balances(ctx context.Context, account common.Address) (map[engine.TokenID]*uint256.Int, error) {
	var balances map[common.Address]*hexutil.U256
	if err := rc.call(ctx, &balances, "balances", account); err != nil {
		return nil, err
	}
	out := make(map[engine.TokenID]*uint256.Int, len(balances))
	for token, amount := range balances {
		out[token] = server.Amount(amount)
	}
	return out, nil
}

func (rc *RouterClient) call(ctx context.Context, result any, method string, args ...any) error {
	err := rc.c.CallContext(ctx, result, server.RpcNamespace+"_"+method, args...)
	return remote(err)
}

// remoteError is a routing failure reported by the server. It matches both
// the aggregator sentinel its code stands for and the transport error.
type remoteError struct {
	sentinel error
	err      error
}

func (e *remoteError) Error() string   { return e.err.Error() }
func (e *remoteError) Unwrap() []error { return []error{e.sentinel, e.err} }

func remote(err error) error {
	var rpcErr rpc.Error
	if !errors.As(err, &rpcErr) {
		return err
	}
	if sentinel := server.Sentinel(rpcErr.ErrorCode()); sentinel != nil {
		return &remoteError{sentinel: sentinel, err: err}
	}
	return err
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/defistate/defistate-aggregator-go/aggregator"
	"github.com/defistate/defistate-aggregator-go/amm"
	"github.com/defistate/defistate-aggregator-go/engine"
	"github.com/defistate/defistate-aggregator-go/protocols/tokenregistry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"
)

const (
	// RpcNamespace is the namespace under which the router API is registered.
	RpcNamespace = "router"
	// SwapSubscriptionMethod is the subscription name passed to router_subscribe.
	SwapSubscriptionMethod = "subscribeSwaps"

	swapBufferSize = 64
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Router is the routing surface served over JSON-RPC.
type Router interface {
	Quote(supply, target engine.TokenID, amount *uint256.Int, mode aggregator.Mode) (aggregator.RouteQuote, error)
	SwapWithExactSupply(caller common.Address, supply, target engine.TokenID, supplyAmount, minTargetAmount *uint256.Int) (aggregator.SwapEvent, error)
	SwapWithExactTarget(caller common.Address, supply, target engine.TokenID, targetAmount, maxSupplyAmount *uint256.Int) (aggregator.SwapEvent, error)
	SubscribeSwaps(ch chan<- aggregator.SwapEvent) event.Subscription
}

// Ledger exposes the exchange state served read-only over JSON-RPC.
type Ledger interface {
	Tokens() []tokenregistry.Token
	Pools() []amm.PoolInfo
	Balance(account common.Address, token engine.TokenID) *uint256.Int
	Balances(account common.Address) map[engine.TokenID]*uint256.Int
}

// Config holds the configuration for the Server.
type Config struct {
	Router Router
	Ledger Ledger
	Logger Logger
	// AllowedOrigins for websocket upgrades. Defaults to any origin.
	AllowedOrigins []string
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.Router == nil {
		return errors.New("config: Router is required")
	}
	if c.Ledger == nil {
		return errors.New("config: Ledger is required")
	}
	if c.Logger == nil {
		return errors.New("config: Logger is required")
	}
	return nil
}

// Server serves the router API over HTTP and websocket.
type Server struct {
	rpc     *rpc.Server
	origins []string
	logger  Logger
}

// New creates a Server and registers the router API.
func New(cfg Config) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	srv := rpc.NewServer()
	api := &API{router: cfg.Router, ledger: cfg.Ledger, logger: cfg.Logger}
	if err := srv.RegisterName(RpcNamespace, api); err != nil {
		return nil, fmt.Errorf("failed to register API: %w", err)
	}
	return &Server{rpc: srv, origins: origins, logger: cfg.Logger}, nil
}

// Handler serves JSON-RPC over HTTP POST and upgrades websocket requests.
// Subscriptions are only available over websocket.
func (s *Server) Handler() http.Handler {
	ws := s.rpc.WebsocketHandler(s.origins)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isWebsocket(r) {
			ws.ServeHTTP(w, r)
			return
		}
		s.rpc.ServeHTTP(w, r)
	})
}

// DialInProc attaches an in-process client to the server.
func (s *Server) DialInProc() *rpc.Client {
	return rpc.DialInProc(s.rpc)
}

// Stop closes all connections and cancels every subscription.
func (s *Server) Stop() {
	s.logger.Info("Stopping RPC server.")
	s.rpc.Stop()
}

func isWebsocket(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket") &&
		strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade")
}

// API is the receiver registered under RpcNamespace. Its exported methods are
// the router_* calls.
type API struct {
	router Router
	ledger Ledger
	logger Logger
}

// Quote returns the best path for a trade without executing it.
func (api *API) Quote(args QuoteArgs) (Quote, error) {
	q, err := api.router.Quote(args.Supply, args.Target, Amount(args.Amount), args.Mode)
	if err != nil {
		api.logger.Debug("quote rejected", "mode", args.Mode.String(), "error", err)
		return Quote{}, rpcError(err)
	}
	return newQuote(args.Mode, q), nil
}

// SwapWithExactSupply sells an exact amount along the best path.
func (api *API) SwapWithExactSupply(args ExactSupplyArgs) (Swap, error) {
	ev, err := api.router.SwapWithExactSupply(
		args.Caller, args.Supply, args.Target,
		Amount(args.SupplyAmount), Amount(args.MinTargetAmount),
	)
	if err != nil {
		return Swap{}, rpcError(err)
	}
	return newSwap(ev), nil
}

// SwapWithExactTarget buys an exact amount along the best path.
func (api *API) SwapWithExactTarget(args ExactTargetArgs) (Swap, error) {
	ev, err := api.router.SwapWithExactTarget(
		args.Caller, args.Supply, args.Target,
		Amount(args.TargetAmount), Amount(args.MaxSupplyAmount),
	)
	if err != nil {
		return Swap{}, rpcError(err)
	}
	return newSwap(ev), nil
}

// Tokens lists the tokens the exchange recognizes.
func (api *API) Tokens() []tokenregistry.Token {
	return api.ledger.Tokens()
}

// Pools lists the listed pools with their current venue state.
func (api *API) Pools() []amm.PoolInfo {
	return api.ledger.Pools()
}

// Balance returns account's holding of token.
func (api *API) Balance(account common.Address, token common.Address) *hexutil.U256 {
	return Hex(api.ledger.Balance(account, token))
}

// Balances returns every holding of account.
func (api *API) Balances(account common.Address) map[common.Address]*hexutil.U256 {
	held := api.ledger.Balances(account)
	out := make(map[common.Address]*hexutil.U256, len(held))
	for token, amount := range held {
		out[token] = Hex(amount)
	}
	return out
}

// SubscribeSwaps streams every executed swap, or only those of trader if given.
func (api *API) SubscribeSwaps(ctx context.Context, trader *common.Address) (*rpc.Subscription, error) {
	notifier, supported := rpc.NotifierFromContext(ctx)
	if !supported {
		return nil, rpc.ErrNotificationsUnsupported
	}

	rpcSub := notifier.CreateSubscription()
	relay := newSwapRelay(swapBufferSize, trader)
	feedSub := api.router.SubscribeSwaps(relay.feed)
	api.logger.Info("Swap subscription opened", "id", rpcSub.ID)

	quit := make(chan struct{})
	go func() {
		defer feedSub.Unsubscribe()
		relay.run(quit, func(total uint64) {
			if total == 1 || total%swapBufferSize == 0 {
				api.logger.Warn("Swap subscriber is too slow, dropping events", "id", rpcSub.ID, "dropped", total)
			}
		})
	}()

	go func() {
		defer close(quit)
		for {
			select {
			case ev := <-relay.queue:
				if err := notifier.Notify(rpcSub.ID, newSwap(ev)); err != nil {
					api.logger.Warn("Error notifying subscriber", "id", rpcSub.ID, "error", err)
					return
				}
			case <-rpcSub.Err():
				api.logger.Info("Swap subscription closed", "id", rpcSub.ID)
				return
			}
		}
	}()
	return rpcSub, nil
}

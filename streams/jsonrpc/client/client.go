package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/defistate/defistate-aggregator-go/aggregator"
	"github.com/defistate/defistate-aggregator-go/streams/jsonrpc/server"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
)

// Constants for reconnection logic
const (
	initialReconnectDelay = 1 * time.Second
	maxReconnectDelay     = 30 * time.Second
)

var ErrInvalidSwap = errors.New("invalid swap notification")

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds the configuration for the client.
type Config struct {
	URL        string
	Logger     Logger
	BufferSize uint
	// Trader restricts the stream to the swaps of one account. All swaps are streamed if nil.
	Trader *common.Address
}

// validate checks if the configuration is valid.
func (c *Config) validate() error {
	if c.URL == "" {
		return errors.New("config: URL is required")
	}
	if c.BufferSize < 1 {
		return errors.New("config: BufferSize must be greater than 0")
	}
	if c.Logger == nil {
		return errors.New("config: Logger is required")
	}
	return nil
}

// -----------------------------------------------------------------------------
// SwapProcessor
// -----------------------------------------------------------------------------

// SwapProcessor parses swap notifications, rejects malformed ones and
// broadcasts the rest. It is decoupled from the networking layer.
type SwapProcessor struct {
	swapCh chan aggregator.SwapEvent
	logger Logger
}

// NewSwapProcessor creates a pure logic processor without networking.
func NewSwapProcessor(logger Logger, bufferSize uint) *SwapProcessor {
	return &SwapProcessor{
		logger: logger,
		swapCh: make(chan aggregator.SwapEvent, bufferSize),
	}
}

// Swaps returns a read-only channel for receiving executed swaps.
func (sp *SwapProcessor) Swaps() <-chan aggregator.SwapEvent {
	return sp.swapCh
}

// ProcessMessage accepts one raw swap notification and, if it is well formed,
// delivers it on the swap channel.
func (sp *SwapProcessor) ProcessMessage(rawData json.RawMessage) error {
	processingStart := time.Now()

	var swap server.Swap
	if err := json.Unmarshal(rawData, &swap); err != nil {
		return fmt.Errorf("failed to unmarshal swap notification: %w", err)
	}
	ev := swap.Event()
	if err := validateSwap(ev); err != nil {
		return err
	}

	sp.logger.Debug("Swap Processed",
		"trader", ev.Trader.Hex(),
		"mode", ev.Mode.String(),
		"supply_amount", ev.SupplyAmount.Dec(),
		"target_amount", ev.TargetAmount.Dec(),
		"hops", len(ev.Path),
		"latency_proc_ms", time.Since(processingStart).Milliseconds(),
	)
	sp.swapCh <- ev
	return nil
}

func validateSwap(ev aggregator.SwapEvent) error {
	switch {
	case ev.SupplyAmount == nil || ev.TargetAmount == nil:
		return fmt.Errorf("%w: missing amount", ErrInvalidSwap)
	case len(ev.Path) == 0:
		return fmt.Errorf("%w: %w", ErrInvalidSwap, aggregator.ErrEmptyPath)
	case !ev.Path.Continuous():
		return fmt.Errorf("%w: %w: %s", ErrInvalidSwap, aggregator.ErrBrokenPath, ev.Path)
	case ev.Path.Source() != ev.SupplyToken || ev.Path.Destination() != ev.TargetToken:
		return fmt.Errorf("%w: path %s does not trade %s for %s", ErrInvalidSwap, ev.Path, ev.SupplyToken.Hex(), ev.TargetToken.Hex())
	}
	return nil
}

// -----------------------------------------------------------------------------
// Client (Networking Wrapper)
// -----------------------------------------------------------------------------

// Client keeps a swap subscription open, reconnecting with backoff, and uses
// SwapProcessor for logic.
type Client struct {
	processor *SwapProcessor
	trader    *common.Address
	errCh     chan error
	logger    Logger
}

// NewClient creates a new client with networking enabled.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := &Client{
		processor: NewSwapProcessor(cfg.Logger, cfg.BufferSize),
		trader:    cfg.Trader,
		errCh:     make(chan error, 1),
		logger:    cfg.Logger,
	}

	go client.run(ctx, cfg.URL)
	return client, nil
}

// Swaps delegates to the processor's swap channel.
func (c *Client) Swaps() <-chan aggregator.SwapEvent {
	return c.processor.Swaps()
}

// Err returns a read-only channel for receiving fatal (unrecoverable) errors.
func (c *Client) Err() <-chan error {
	return c.errCh
}

// run handles the networking lifecycle and feeds data to the processor.
func (c *Client) run(ctx context.Context, url string) {
	defer close(c.errCh)
	reconnectDelay := initialReconnectDelay

	for {
		if ctx.Err() != nil {
			c.logger.Info("Client context canceled, shutting down.")
			return
		}

		c.logger.Info("Attempting to connect to RPC server", "url", url)
		rpcClient, err := rpc.DialContext(ctx, url)
		if err != nil {
			c.logger.Error("Failed to connect to RPC server, will retry...", "error", err, "delay", reconnectDelay)
			if !sleep(ctx, reconnectDelay) {
				return
			}
			reconnectDelay = min(reconnectDelay*2, maxReconnectDelay)
			continue
		}

		c.logger.Info("Successfully connected to RPC server.")
		reconnectDelay = initialReconnectDelay

		err = c.subscribeAndProcess(ctx, rpcClient)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("Context canceled, shutting down.")
				return
			}
			if errors.Is(err, rpc.ErrNotificationsUnsupported) {
				c.errCh <- fmt.Errorf("swap stream needs a websocket URL: %w", err)
				return
			}
			c.logger.Error("Subscription failed, will reconnect...", "error", err, "delay", reconnectDelay)
			if !sleep(ctx, reconnectDelay) {
				return
			}
			reconnectDelay = min(reconnectDelay*2, maxReconnectDelay)
		}
	}
}

func (c *Client) subscribeAndProcess(ctx context.Context, rpcClient *rpc.Client) error {
	defer rpcClient.Close()

	args := []any{server.SwapSubscriptionMethod}
	if c.trader != nil {
		args = append(args, *c.trader)
	}

	rawCh := make(chan json.RawMessage)
	sub, err := rpcClient.Subscribe(ctx, server.RpcNamespace, rawCh, args...)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	c.logger.Info("Successfully subscribed. Waiting for swaps...")
	for {
		select {
		case rawData := <-rawCh:
			if err := c.processor.ProcessMessage(rawData); err != nil {
				c.logger.Error("Error processing message", "error", err)
			}
		case err := <-sub.Err():
			return err
		case <-ctx.Done():
			c.logger.Info("Context cancelled, stopping subscription.")
			return ctx.Err()
		}
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

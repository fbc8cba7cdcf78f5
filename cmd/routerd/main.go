package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/defistate/defistate-aggregator-go/aggregator"
	"github.com/defistate/defistate-aggregator-go/amm"
	"github.com/defistate/defistate-aggregator-go/cmd/routerd/config"
	poolregistry "github.com/defistate/defistate-aggregator-go/protocols/poolregistry"
	"github.com/defistate/defistate-aggregator-go/streams/jsonrpc/server"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	EnvConfig       = "ROUTERD_CONFIG"
	shutdownTimeout = 5 * time.Second
)

func main() {
	// create the log handler
	rootLogHandler := slog.NewJSONHandler(os.Stdout, nil)
	close := func() {
		os.Exit(1)
	}

	rootLogger := slog.New(rootLogHandler)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		rootLogger.Warn("Failed to load .env file", "error", err)
	}

	configPath := resolveConfigPath()
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		rootLogger.Error("Failed to load configuration", "error", err)
		close()
	}

	// Create a context that cancels when the OS sends an interrupt (Ctrl+C) or termination signal.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dex, err := amm.New(amm.Config{Tokens: cfg.Tokens, Logger: rootLogger.With("component", "amm")})
	if err != nil {
		rootLogger.Error("Failed to initialize AMM", "error", err)
		close()
	}
	if err := seed(dex, cfg); err != nil {
		rootLogger.Error("Failed to seed AMM", "error", err)
		close()
	}

	agg, err := aggregator.New(aggregator.Config{
		Environment:   dex,
		HopLimit:      cfg.HopLimit,
		NoRepeatPools: cfg.NoRepeatPools,
		Logger:        rootLogger.With("component", "aggregator"),
		Registry:      prometheus.DefaultRegisterer,
	})
	if err != nil {
		rootLogger.Error("Failed to initialize Aggregator", "error", err)
		close()
	}

	rpcServer, err := server.New(server.Config{
		Router:         agg,
		Ledger:         dex,
		Logger:         rootLogger.With("component", "jsonrpc-server"),
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		rootLogger.Error("Failed to initialize RPC server", "error", err)
		close()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", rpcServer.Handler())
	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rootLogger.Info("Serving router", "listen", cfg.Listen, "hop_limit", agg.HopLimit(), "pools", len(dex.Pools()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// SIGHUP re-reads the pool section of the config file.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

serve:
	for {
		select {
		case err := <-errCh:
			rootLogger.Error("HTTP server failed", "error", err)
			rpcServer.Stop()
			close()
		case <-hup:
			reloaded, err := config.LoadConfig(configPath)
			if err == nil {
				err = syncPools(dex, reloaded)
			}
			if err != nil {
				rootLogger.Error("Failed to reload pools", "path", configPath, "error", err)
				continue
			}
			rootLogger.Info("Reloaded pools", "path", configPath, "listed", len(dex.Pools()))
		case <-ctx.Done():
			break serve
		}
	}

	rootLogger.Info("Shutting down")
	rpcServer.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		rootLogger.Error("HTTP shutdown failed", "error", err)
	}
}

// seed lists the configured pools and funds the configured accounts.
func seed(dex *amm.Dex, cfg *config.RouterConfig) error {
	if err := syncPools(dex, cfg); err != nil {
		return err
	}

	deposits, err := cfg.Deposits()
	if err != nil {
		return err
	}
	for _, d := range deposits {
		if err := dex.Deposit(d.Account, d.Token, d.Amount); err != nil {
			return fmt.Errorf("funding %s: %w", d.Account.Hex(), err)
		}
	}
	return nil
}

// syncPools lists configured pools the Dex has never held, then makes the
// configured, not delisted, pools the whole listing. Venue state the Dex
// already holds keeps its traded reserves.
func syncPools(dex *amm.Dex, cfg *config.RouterConfig) error {
	states, err := cfg.PoolStates()
	if err != nil {
		return err
	}

	seen := make(map[poolregistry.PoolKey]bool, len(states))
	var target poolregistry.PoolRegistry
	for i, ps := range states {
		key, err := ps.Key()
		if err != nil {
			return fmt.Errorf("pool %d: %w", i, err)
		}
		if seen[key] {
			return fmt.Errorf("pool %d: %w: configured twice", i, amm.ErrPoolExists)
		}
		seen[key] = true

		pool, ok := dex.Known(key)
		if !ok {
			if pool, err = dex.ListPool(ps); err != nil {
				return fmt.Errorf("listing pool %d: %w", i, err)
			}
		}
		if !cfg.Pools[i].Delisted {
			target.Pools = append(target.Pools, pool)
		}
	}
	return dex.SetListings(target)
}

func resolveConfigPath() string {
	path := flag.String("config", "", "Path to the configuration file (default $"+EnvConfig+" or config.yaml).")
	flag.Parse()

	if *path == "" {
		*path = os.Getenv(EnvConfig)
	}
	if *path == "" {
		*path = "config.yaml"
	}
	log.Printf("Loading configuration from: %s", *path)
	return *path
}

// Package node assembles the service: storage, key derivation, external
// API clients, the reconciliation watcher and the HTTP API, wired from
// one Config.
package node

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ordforge/ordforge/config"
	"github.com/ordforge/ordforge/internal/inscriber"
	olog "github.com/ordforge/ordforge/internal/log"
	"github.com/ordforge/ordforge/internal/mempool"
	"github.com/ordforge/ordforge/internal/rpc"
	"github.com/ordforge/ordforge/internal/store"
	"github.com/ordforge/ordforge/internal/wallet"
	"github.com/ordforge/ordforge/internal/watcher"
)

// Node is a fully-initialized service instance.
type Node struct {
	cfg    *config.Config
	logger zerolog.Logger

	// Core
	store   *store.Store
	deriver *wallet.Deriver

	// External collaborators
	ledger *mempool.Client
	svc    *inscriber.Client

	// Background work
	watcher   *watcher.Watcher
	rpcServer *rpc.Server

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates and initializes a Node. It performs all setup (logger,
// key derivation, storage, clients) but does not start background
// goroutines. Call Start for that.
func New(cfg *config.Config) (*Node, error) {
	logFile := cfg.Log.File
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = logsDir + "/ordforge.log"
	}
	if err := olog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := olog.WithComponent("node")

	if cfg.Payment.Mnemonic == "" {
		return nil, fmt.Errorf("no payment mnemonic: set %s or create a keystore with ordforge-cli", config.PaymentMnemonicEnv)
	}
	params := wallet.ChainParams(cfg.Network)
	deriver, err := wallet.NewDeriver(cfg.Payment.Mnemonic, params)
	if err != nil {
		return nil, fmt.Errorf("initializing key derivation: %w", err)
	}

	ordersDir := cfg.OrdersDir()
	if err := os.MkdirAll(ordersDir, 0700); err != nil {
		return nil, fmt.Errorf("creating orders dir: %w", err)
	}
	db, err := store.NewBadger(ordersDir)
	if err != nil {
		return nil, fmt.Errorf("opening order database: %w", err)
	}
	st := store.New(db)

	ledger := mempool.NewWithTimeout(cfg.Mempool.BaseURL, cfg.Mempool.Timeout)
	svc := inscriber.New(cfg.Inscriber.BaseURL, cfg.Inscriber.WebhookBaseURL, cfg.Inscriber.Timeout)

	n := &Node{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		deriver: deriver,
		ledger:  ledger,
		svc:     svc,
	}

	if cfg.Watcher.Enabled {
		n.watcher = watcher.New(watcher.Config{
			Store:         st,
			Ledger:        ledger,
			Service:       svc,
			Keys:          deriver,
			Interval:      cfg.Watcher.Interval,
			InscribeDelay: cfg.Watcher.InscribeDelay,
		})
	}
	if cfg.RPC.Enabled {
		addr := fmt.Sprintf("%s:%d", cfg.RPC.Addr, cfg.RPC.Port)
		n.rpcServer = rpc.New(addr, st, svc, deriver, cfg.Inscriber.ReferralFee)
	}

	return n, nil
}

// Start launches the API server and the reconciliation loop.
func (n *Node) Start() error {
	n.ctx, n.cancel = context.WithCancel(context.Background())

	if n.rpcServer != nil {
		if err := n.rpcServer.Start(); err != nil {
			return err
		}
	}
	if n.watcher != nil {
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			n.watcher.Run(n.ctx)
		}()
	}

	n.logger.Info().
		Str("network", string(n.cfg.Network)).
		Str("datadir", n.cfg.DataDir).
		Msg("Node started")
	return nil
}

// Stop shuts everything down in reverse order and closes storage.
func (n *Node) Stop() {
	n.logger.Info().Msg("Shutting down")

	if n.cancel != nil {
		n.cancel()
	}
	if n.rpcServer != nil {
		if err := n.rpcServer.Stop(); err != nil {
			n.logger.Error().Err(err).Msg("API shutdown failed")
		}
	}
	n.wg.Wait()

	if err := n.store.Close(); err != nil {
		n.logger.Error().Err(err).Msg("Closing order database failed")
	}
	n.logger.Info().Msg("Node stopped")
}

// RPCAddr returns the bound API address, empty when the API is disabled.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}

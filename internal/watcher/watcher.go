// Package watcher runs the periodic reconciliation pass that drives
// orders through their lifecycle: it watches derived payment addresses
// for incoming funds, forwards confirmed payments to the inscription
// service, places the animation HTML orders once every frame is on
// chain, and promotes orders as their reveal transactions confirm.
package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ordforge/ordforge/internal/inscriber"
	"github.com/ordforge/ordforge/internal/log"
	"github.com/ordforge/ordforge/internal/mempool"
	"github.com/ordforge/ordforge/internal/store"
	"github.com/ordforge/ordforge/internal/wallet"
)

// Ledger is the slice of the ledger-explorer API the watcher consumes.
type Ledger interface {
	AddressUTXOs(ctx context.Context, address string) ([]mempool.UTXO, error)
	Tx(ctx context.Context, txid string) (*mempool.Tx, error)
	RecommendedFeeRate(ctx context.Context) (float64, error)
	Broadcast(ctx context.Context, rawHex string) (string, error)
}

// InscriptionService is the slice of the inscription service client the
// watcher consumes.
type InscriptionService interface {
	CreateOrder(ctx context.Context, files []inscriber.File, receiveAddress string, feeRate int64, rareSats, updateToken string) (*inscriber.Order, error)
	Order(ctx context.Context, id string) (*inscriber.Order, error)
}

// Watcher reconciles order state against the ledger on a fixed interval.
// Passes never overlap: if one is still running when the next tick
// fires, the tick is skipped.
type Watcher struct {
	store  *store.Store
	ledger Ledger
	svc    InscriptionService
	keys   *wallet.Deriver

	interval      time.Duration
	inscribeDelay time.Duration

	logger zerolog.Logger

	// mu guards against overlapping passes.
	mu sync.Mutex
}

// Config carries the watcher's dependencies and timing policy.
type Config struct {
	Store    *store.Store
	Ledger   Ledger
	Service  InscriptionService
	Keys     *wallet.Deriver
	Interval time.Duration
	// InscribeDelay is the pause between orders in the HTML
	// inscription stage, to stay under external API rate limits.
	InscribeDelay time.Duration
}

// New creates a Watcher. Zero timing values get defaults of 3 minutes
// between passes and 5 seconds between HTML inscriptions.
func New(cfg Config) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 3 * time.Minute
	}
	if cfg.InscribeDelay <= 0 {
		cfg.InscribeDelay = 5 * time.Second
	}
	return &Watcher{
		store:         cfg.Store,
		ledger:        cfg.Ledger,
		svc:           cfg.Service,
		keys:          cfg.Keys,
		interval:      cfg.Interval,
		inscribeDelay: cfg.InscribeDelay,
		logger:        log.Watcher,
	}
}

// Run ticks until ctx is cancelled. The first pass runs after one full
// interval, not immediately.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Dur("interval", w.interval).Msg("Reconciliation loop started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Reconciliation loop stopped")
			return
		case <-ticker.C:
			w.RunPass(ctx)
		}
	}
}

// RunPass runs one reconciliation pass. If a previous pass is still in
// flight the call is skipped.
func (w *Watcher) RunPass(ctx context.Context) {
	if !w.mu.TryLock() {
		w.logger.Warn().Msg("Previous pass still running, skipping tick")
		return
	}
	defer w.mu.Unlock()

	start := time.Now()

	if err := w.watchPayments(ctx); err != nil {
		w.logger.Error().Err(err).Msg("Payment pass failed")
	}
	if err := w.watchReveals(ctx); err != nil {
		w.logger.Error().Err(err).Msg("Reveal confirmation pass failed")
	}
	if err := w.inscribeReadyOrders(ctx); err != nil {
		w.logger.Error().Err(err).Msg("HTML inscription pass failed")
	}

	w.logger.Debug().Dur("elapsed", time.Since(start)).Msg("Pass complete")
}

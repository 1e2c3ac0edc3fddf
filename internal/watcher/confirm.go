package watcher

import (
	"context"
	"fmt"

	"github.com/ordforge/ordforge/internal/store"
)

// watchReveals checks reveal transactions for orders whose inscriptions
// are pending and promotes the order once every reveal has confirmed.
func (w *Watcher) watchReveals(ctx context.Context) error {
	orders, err := w.store.OrdersByStatus(
		store.StatusImageOrdinalsPending,
		store.StatusHTMLOrdinalsPending,
	)
	if err != nil {
		return fmt.Errorf("list pending-inscription orders: %w", err)
	}

	for _, order := range orders {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.checkOrderReveals(ctx, order); err != nil {
			w.logger.Error().Err(err).Uint64("order", order.ID).Msg("Reveal check failed")
		}
	}
	return nil
}

func (w *Watcher) checkOrderReveals(ctx context.Context, order *store.Order) error {
	stage := store.StageImage
	expected := len(order.Frames)
	next := store.StatusImageOrdinalsConfirmed
	if order.Status == store.StatusHTMLOrdinalsPending {
		stage = store.StageHTML
		expected = order.Quantity
		next = store.StatusReady
	}

	ordinal, err := w.store.OrdinalByStage(order.ID, stage)
	if err != nil {
		return fmt.Errorf("load %s ordinal: %w", stage, err)
	}

	w.checkForwardTx(ctx, ordinal)

	if ordinal.RevealTx == store.TxConfirmed {
		_, err := w.store.AdvanceOrder(order.ID, next)
		return err
	}

	// The webhook fires once per inscribed file; until every file has
	// reported a reveal there is nothing to confirm yet.
	if len(ordinal.RevealTxIDs) < expected {
		return nil
	}

	for _, txid := range ordinal.RevealTxIDs {
		tx, err := w.ledger.Tx(ctx, txid)
		if err != nil {
			return fmt.Errorf("fetch reveal tx %s: %w", txid, err)
		}
		if !tx.Status.Confirmed {
			return nil
		}
	}

	if _, err := w.store.UpdateOrdinal(ordinal.ID, func(o *store.Ordinal) error {
		o.RevealTx = store.TxConfirmed
		return nil
	}); err != nil {
		return err
	}
	if _, err := w.store.AdvanceOrder(order.ID, next); err != nil {
		return err
	}

	w.logger.Info().Uint64("order", order.ID).Str("stage", string(stage)).Msg("Inscriptions confirmed")
	return nil
}

// checkForwardTx records confirmation of our own forwarding transaction.
// Informational only; state transitions key off the reveal transactions.
func (w *Watcher) checkForwardTx(ctx context.Context, ordinal *store.Ordinal) {
	if ordinal.ForwardTxID == "" || ordinal.ForwardTx == store.TxConfirmed {
		return
	}
	tx, err := w.ledger.Tx(ctx, ordinal.ForwardTxID)
	if err != nil || !tx.Status.Confirmed {
		return
	}
	updated, err := w.store.UpdateOrdinal(ordinal.ID, func(o *store.Ordinal) error {
		o.ForwardTx = store.TxConfirmed
		return nil
	})
	if err != nil {
		return
	}
	*ordinal = *updated
}

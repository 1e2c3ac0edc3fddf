package watcher

import (
	"context"
	"fmt"

	"github.com/ordforge/ordforge/internal/spend"
	"github.com/ordforge/ordforge/internal/store"
)

// watchPayments checks every order still waiting on customer funds and
// advances it as far as the ledger allows. An order whose payment has
// confirmed is forwarded in the same pass.
func (w *Watcher) watchPayments(ctx context.Context) error {
	orders, err := w.store.OrdersByStatus(
		store.StatusUnpaid,
		store.StatusPaymentPending,
		store.StatusPaymentConfirmed,
	)
	if err != nil {
		return fmt.Errorf("list awaiting orders: %w", err)
	}

	for _, order := range orders {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.checkOrderPayment(ctx, order); err != nil {
			w.logger.Error().Err(err).Uint64("order", order.ID).Msg("Payment check failed")
		}
	}
	return nil
}

// checkOrderPayment inspects one order's derived address and moves the
// order along. Forwarding failures leave the order in PAYMENT_CONFIRMED
// so the next pass retries with a fresh plan.
func (w *Watcher) checkOrderPayment(ctx context.Context, order *store.Order) error {
	if order.Status == store.StatusPaymentConfirmed {
		return w.forwardImageCharge(ctx, order)
	}

	address, err := w.keys.OrderAddress(int64(order.ID))
	if err != nil {
		return fmt.Errorf("derive address: %w", err)
	}

	utxos, err := w.ledger.AddressUTXOs(ctx, address)
	if err != nil {
		return fmt.Errorf("fetch utxos for %s: %w", address, err)
	}
	if len(utxos) == 0 {
		return nil
	}

	first := utxos[0]
	if !first.Status.Confirmed {
		if order.Status == store.StatusPaymentPending {
			return nil
		}
		_, err := w.store.UpdateOrder(order.ID, func(o *store.Order) error {
			o.Status = store.StatusPaymentPending
			o.PaymentTxID = first.TxID
			return nil
		})
		if err != nil {
			return err
		}
		w.logger.Info().Uint64("order", order.ID).Str("txid", first.TxID).Msg("Payment seen in mempool")
		return nil
	}

	updated, err := w.store.UpdateOrder(order.ID, func(o *store.Order) error {
		o.Status = store.StatusPaymentConfirmed
		if o.PaymentTxID == "" {
			o.PaymentTxID = first.TxID
		}
		return nil
	})
	if err != nil {
		return err
	}
	w.logger.Info().Uint64("order", order.ID).Msg("Payment confirmed")

	return w.forwardImageCharge(ctx, updated)
}

// forwardImageCharge pays the inscription service's charge for the
// order's image-stage inscription and marks the order pending.
func (w *Watcher) forwardImageCharge(ctx context.Context, order *store.Order) error {
	ordinal, err := w.store.OrdinalByStage(order.ID, store.StageImage)
	if err != nil {
		return fmt.Errorf("load image ordinal: %w", err)
	}

	svcOrder, err := w.svc.Order(ctx, ordinal.ServiceID)
	if err != nil {
		return fmt.Errorf("fetch inscription order %s: %w", ordinal.ServiceID, err)
	}

	w.logger.Info().
		Uint64("order", order.ID).
		Int64("amount", svcOrder.Charge.Amount).
		Str("address", svcOrder.Charge.Address).
		Msg("Forwarding payment")

	txid, fee, err := w.forward(ctx, order, svcOrder.Charge.Amount, svcOrder.Charge.Address)
	if err != nil {
		return fmt.Errorf("forward image charge: %w", err)
	}

	if _, err := w.store.UpdateOrdinal(ordinal.ID, func(o *store.Ordinal) error {
		o.ForwardTxID = txid
		o.ForwardTx = store.TxPending
		return nil
	}); err != nil {
		return err
	}
	if _, err := w.store.AdvanceOrder(order.ID, store.StatusImageOrdinalsPending); err != nil {
		return err
	}

	w.logger.Info().Uint64("order", order.ID).Str("txid", txid).Int64("fee", fee).Msg("Payment forwarded")
	return nil
}

// forward spends the order's derived-address funds to the recipient:
// fresh UTXO snapshot, live recommended fee rate, select, sign,
// broadcast. Returns the broadcast txid and the miner fee paid.
func (w *Watcher) forward(ctx context.Context, order *store.Order, amount int64, recipient string) (string, int64, error) {
	key, err := w.keys.OrderKey(int64(order.ID))
	if err != nil {
		return "", 0, fmt.Errorf("derive key: %w", err)
	}

	utxos, err := w.ledger.AddressUTXOs(ctx, key.Address.EncodeAddress())
	if err != nil {
		return "", 0, fmt.Errorf("fetch utxos: %w", err)
	}

	feeRate, err := w.ledger.RecommendedFeeRate(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("fetch fee rate: %w", err)
	}

	plan, err := spend.SelectCoins(amount, feeRate, recipient, utxos, w.keys.Params())
	if err != nil {
		return "", 0, fmt.Errorf("select coins: %w", err)
	}

	signed, err := spend.BuildTx(plan, key, w.keys.Params())
	if err != nil {
		return "", 0, fmt.Errorf("build transaction: %w", err)
	}

	txid, err := w.ledger.Broadcast(ctx, signed.Hex)
	if err != nil {
		return "", 0, fmt.Errorf("broadcast: %w", err)
	}
	return txid, signed.Fee, nil
}

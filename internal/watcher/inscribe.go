package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ordforge/ordforge/internal/gifhtml"
	"github.com/ordforge/ordforge/internal/inscriber"
	"github.com/ordforge/ordforge/internal/store"
)

// inscribeReadyOrders places the animation HTML order for every order
// whose frame images have all confirmed on chain, then forwards the
// service's charge. Orders are processed one at a time with a pause in
// between to stay under the inscription service's rate limits.
func (w *Watcher) inscribeReadyOrders(ctx context.Context) error {
	orders, err := w.store.OrdersByStatus(store.StatusImageOrdinalsConfirmed)
	if err != nil {
		return fmt.Errorf("list image-complete orders: %w", err)
	}

	for i, order := range orders {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.inscribeDelay):
			}
		}
		if err := w.inscribeHTML(ctx, order); err != nil {
			w.logger.Error().Err(err).Uint64("order", order.ID).Msg("HTML inscription failed")
		}
	}
	return nil
}

// inscribeHTML assembles the order's animation page, orders its
// inscription (quantity copies in one service order) and forwards the
// charge. If a service order already exists from an earlier pass whose
// forwarding failed, it is reused instead of placed again.
func (w *Watcher) inscribeHTML(ctx context.Context, order *store.Order) error {
	ordinal, err := w.store.OrdinalByStage(order.ID, store.StageHTML)
	if err != nil && !errors.Is(err, store.ErrOrdinalNotFound) {
		return err
	}

	if ordinal == nil {
		html := gifhtml.Build(fmt.Sprintf("%d.gif", order.ID), order.Frames)
		size := int64(len(html))
		dataURL := gifhtml.DataURL(html)

		files := make([]inscriber.File, order.Quantity)
		for i := range files {
			files[i] = inscriber.File{
				Name:    fmt.Sprintf("%d-%d.html", order.ID, i+1),
				Size:    size,
				Type:    "text/html",
				DataURL: dataURL,
			}
		}

		svcOrder, err := w.svc.CreateOrder(ctx, files, order.ReceiveAddress, order.FeeRate, order.RareSats, order.UpdateToken)
		if err != nil {
			return fmt.Errorf("create html inscription order: %w", err)
		}

		ordinal = &store.Ordinal{
			OrderID:       order.ID,
			Stage:         store.StageHTML,
			ServiceID:     svcOrder.ID,
			ChargeAddress: svcOrder.Charge.Address,
			ChargeAmount:  svcOrder.Charge.Amount,
		}
		if err := w.store.CreateOrdinal(ordinal); err != nil {
			return fmt.Errorf("persist html ordinal: %w", err)
		}
		w.logger.Info().Uint64("order", order.ID).Str("service_id", svcOrder.ID).Msg("HTML inscription ordered")
	}

	txid, fee, err := w.forward(ctx, order, ordinal.ChargeAmount, ordinal.ChargeAddress)
	if err != nil {
		return fmt.Errorf("forward html charge: %w", err)
	}

	if _, err := w.store.UpdateOrdinal(ordinal.ID, func(o *store.Ordinal) error {
		o.ForwardTxID = txid
		o.ForwardTx = store.TxPending
		return nil
	}); err != nil {
		return err
	}
	if _, err := w.store.AdvanceOrder(order.ID, store.StatusHTMLOrdinalsPending); err != nil {
		return err
	}

	w.logger.Info().Uint64("order", order.ID).Str("txid", txid).Int64("fee", fee).Msg("HTML charge forwarded")
	return nil
}

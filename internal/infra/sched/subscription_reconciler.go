// File: internal/infra/sched/subscription_reconciler.go
package sched

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"wellness-order-service/internal/domain/ports/repository"
	"wellness-order-service/internal/infra/metrics"
	"wellness-order-service/internal/usecase"
)

// SubscriptionReconciler periodically scans for paid non-camp orders whose
// owner has no subscription row and replays the repair path. This covers the
// case where the callback committed the order but the entitlement write was
// lost (the soft-fail side of the error policy), without waiting for the
// provider to happen to redeliver.
type SubscriptionReconciler struct {
	orders   repository.OrderRepository
	benefits usecase.BenefitUseCase
	tm       repository.TransactionManager
	interval time.Duration
	batch    int
	log      *zerolog.Logger
}

func NewSubscriptionReconciler(orders repository.OrderRepository, benefits usecase.BenefitUseCase, tm repository.TransactionManager, interval time.Duration, batch int, logger *zerolog.Logger) *SubscriptionReconciler {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if batch <= 0 {
		batch = 100
	}
	return &SubscriptionReconciler{orders: orders, benefits: benefits, tm: tm, interval: interval, batch: batch, log: logger}
}

func (w *SubscriptionReconciler) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *SubscriptionReconciler) tick(ctx context.Context) {
	orders, err := w.orders.ListPaidMissingSubscription(ctx, repository.NoTX, w.batch)
	if err != nil {
		w.log.Error().Err(err).Msg("reconciler: list paid orders missing subscription failed")
		return
	}
	for _, o := range orders {
		o := o
		var repaired bool
		// Each repair runs in its own transaction so the existence check and
		// the upsert cannot interleave with a concurrent callback self-heal.
		err := w.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			var err error
			repaired, err = w.benefits.RepairSubscription(ctx, tx, o)
			return err
		})
		if err != nil {
			w.log.Error().Err(err).Str("order_no", o.OrderNo).Msg("reconciler: repair failed")
			continue
		}
		if repaired {
			metrics.IncRepair()
			w.log.Info().Str("order_no", o.OrderNo).Msg("reconciler: subscription repaired")
		}
	}
}

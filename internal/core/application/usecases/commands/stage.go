package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// advanceOrder performs one pipeline transition as its own short transaction:
// it reloads the order inside the transaction, re-checks the expected status,
// advances, and persists the new status with its history entry.
//
// The reload-and-recheck makes stage work idempotent under duplicate or late
// task delivery: a concurrent or earlier execution that already moved the
// order past expected turns this call into a no-op. advanced reports whether
// the transition was applied; when false with a nil error, current holds the
// status that was found instead.
func advanceOrder(
	ctx context.Context,
	uow OrderUoW,
	orderID kernel.UUID,
	expected order.Status,
	next order.Status,
	notes string,
	nextDeadlineOffset time.Duration,
) (advanced bool, current order.Status, err error) {
	if err = uow.Begin(ctx); err != nil {
		return false, order.Unknown, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	o, err := orderRepo.Get(ctx, orderID)
	if err != nil {
		return false, order.Unknown, err
	}

	if o.Status() != expected {
		return false, o.Status(), nil
	}

	if err = o.Advance(next, notes, nextDeadlineOffset); err != nil {
		return false, o.Status(), err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		// A concurrent writer won the transition race; treat it like a failed
		// precondition and report whatever status it left behind.
		if errors.Is(err, errs.ErrConcurrentModification) {
			if reloaded, getErr := orderRepo.Get(ctx, orderID); getErr == nil {
				return false, reloaded.Status(), nil
			}
			return false, order.Unknown, nil
		}
		return false, o.Status(), err
	}

	if err = uow.Commit(ctx); err != nil {
		return false, o.Status(), err
	}

	return true, next, nil
}

// markOrderFailed moves the order to FAILED in its own transaction, skipping
// silently when the order is already terminal. Used on the error paths of
// stage handlers where the original error is the one worth returning, so
// failures here are only logged.
func markOrderFailed(
	ctx context.Context,
	uow OrderUoW,
	orderID kernel.UUID,
	notes string,
	logger *slog.Logger,
) {
	if err := uow.Begin(ctx); err != nil {
		logger.ErrorContext(ctx, "failed to mark order as failed",
			slog.String("order_id", orderID.String()), slog.Any("error", err))
		return
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	o, err := orderRepo.Get(ctx, orderID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to mark order as failed",
			slog.String("order_id", orderID.String()), slog.Any("error", err))
		return
	}

	if o.Status().IsTerminal() {
		return
	}

	if err = o.Advance(order.Failed, notes, 0); err != nil {
		logger.ErrorContext(ctx, "failed to mark order as failed",
			slog.String("order_id", orderID.String()), slog.Any("error", err))
		return
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		if errors.Is(err, errs.ErrConcurrentModification) {
			return
		}
		logger.ErrorContext(ctx, "failed to mark order as failed",
			slog.String("order_id", orderID.String()), slog.Any("error", err))
		return
	}

	if err = uow.Commit(ctx); err != nil {
		logger.ErrorContext(ctx, "failed to mark order as failed",
			slog.String("order_id", orderID.String()), slog.Any("error", err))
	}
}

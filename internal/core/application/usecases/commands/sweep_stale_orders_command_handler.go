package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// SweepStaleOrdersCommandHandler is the pipeline watchdog. It finds every
// order in a pipeline-active status whose expected-next deadline has passed
// and fails it with a note recording where it stalled. The sweeper never
// re-enqueues stage work: a missed deadline means the stage's own retries
// were already exhausted or its task was lost, and restarting it would race
// whatever caused the stall.
//
// Example:
//
//	handler := NewSweepStaleOrdersCommandHandler(uowFactory, logger)
//	cmd := NewSweepStaleOrdersCommand()
//
//	// This would typically be called periodically by a scheduler
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("stale order sweep failed: %w", err)
//	}
type SweepStaleOrdersCommandHandler struct {
	uowFactory OrderUoWFactory
	logger     *slog.Logger
}

// NewSweepStaleOrdersCommandHandler creates a handler for the stale-order
// sweep.
func NewSweepStaleOrdersCommandHandler(
	uowFactory OrderUoWFactory,
	logger *slog.Logger,
) SweepStaleOrdersCommandHandler {
	return SweepStaleOrdersCommandHandler{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

// Handle fails all stale orders within a single transaction. Each failed
// order gets one history entry naming the status it stalled in and the
// deadline it missed. An order that a stage advanced between the stale read
// and the write is left alone: the repository's conditional update reports
// the concurrent change and the sweeper skips it.
func (h *SweepStaleOrdersCommandHandler) Handle(ctx context.Context, cmd SweepStaleOrdersCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	staleOrders, err := orderRepo.GetAllStale(ctx, time.Now().UTC())
	if err != nil {
		return err
	}

	swept := 0
	for _, staleOrder := range staleOrders {
		notes := staleNotes(staleOrder)

		if err = staleOrder.Advance(order.Failed, notes, 0); err != nil {
			return err
		}

		if err = orderRepo.Update(ctx, staleOrder); err != nil {
			if errors.Is(err, errs.ErrConcurrentModification) {
				h.logger.InfoContext(ctx, "skipping order advanced during sweep",
					slog.String("order_id", staleOrder.ID().String()))
				continue
			}
			return err
		}
		swept++
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if swept > 0 {
		h.logger.InfoContext(ctx, "swept stale orders",
			slog.Int("count", swept))
	}

	return nil
}

// staleNotes must read the deadline before Advance clears it.
func staleNotes(staleOrder *order.Order) string {
	deadline := "unknown"
	if d := staleOrder.ExpectedNextDeadline(); d != nil {
		deadline = d.Format(time.RFC3339)
	}
	return fmt.Sprintf(
		"Order automatically marked as FAILED: stalled in %s past the expected deadline %s.",
		staleOrder.Status(), deadline)
}

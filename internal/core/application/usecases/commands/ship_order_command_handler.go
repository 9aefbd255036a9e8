package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// ShipOrderCommandHandler runs the shipping stage: it moves a PACKAGING order
// to SHIPPED, simulates the carrier hand-off, and schedules the delivery
// stage.
type ShipOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	queue      ports.TaskQueue
	cfg        Config
	logger     *slog.Logger
}

// NewShipOrderCommandHandler creates a handler for the shipping stage.
func NewShipOrderCommandHandler(
	uowFactory OrderUoWFactory,
	queue ports.TaskQueue,
	cfg Config,
	logger *slog.Logger,
) ShipOrderCommandHandler {
	return ShipOrderCommandHandler{
		uowFactory: uowFactory,
		queue:      queue,
		cfg:        cfg,
		logger:     logger,
	}
}

// Handle ships one order. The PACKAGING precondition is re-checked inside the
// transaction, so duplicate or late task delivery is a logged no-op. The new
// deadline covers the delivery stage expected to act next.
//
// An unexpected error defensively fails the order so the cause lands in the
// durable history ledger, then the error is returned for the queue's retry
// policy; a retry that finds the order FAILED is a no-op.
func (h *ShipOrderCommandHandler) Handle(ctx context.Context, cmd ShipOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	advanced, current, err := advanceOrder(ctx, h.uowFactory.Create(), cmd.OrderID(),
		order.Packaging, order.Shipped, "Order has been shipped.", h.cfg.ShippedDeadlineOffset())
	if err != nil {
		markOrderFailed(ctx, h.uowFactory.Create(), cmd.OrderID(),
			"Order shipping failed unexpectedly.", h.logger)
		return err
	}
	if !advanced {
		h.logger.InfoContext(ctx, "skipping shipping stage",
			slog.String("order_id", cmd.OrderID().String()),
			slog.String("status", current.String()),
			slog.String("expected", order.Packaging.String()))
		return nil
	}

	// Simulated carrier hand-off.
	if err = simulateWork(ctx, h.cfg.ShippingDelayMin, h.cfg.ShippingDelayMax); err != nil {
		return err
	}

	task := ports.Task{Kind: ports.TaskDeliverOrder, OrderID: cmd.OrderID()}
	if err = h.queue.Enqueue(ctx, task, 0); err != nil {
		h.logger.ErrorContext(ctx, "failed to schedule order delivery",
			slog.String("order_id", cmd.OrderID().String()), slog.Any("error", err))
	}

	return nil
}

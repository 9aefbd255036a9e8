package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// DeliverOrderCommandHandler runs the delivery stage: it simulates the
// last-mile delivery and moves a SHIPPED order to its DELIVERED terminal
// state, clearing the expected-next deadline. Nothing is scheduled after it.
type DeliverOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	cfg        Config
	logger     *slog.Logger
}

// NewDeliverOrderCommandHandler creates a handler for the delivery stage.
func NewDeliverOrderCommandHandler(
	uowFactory OrderUoWFactory,
	cfg Config,
	logger *slog.Logger,
) DeliverOrderCommandHandler {
	return DeliverOrderCommandHandler{
		uowFactory: uowFactory,
		cfg:        cfg,
		logger:     logger,
	}
}

// Handle delivers one order. The SHIPPED precondition is checked before the
// simulated last-mile wait, so a duplicate delivery task no-ops immediately
// instead of blocking for the delivery window first; it is then re-checked
// inside the transaction, so the duplicate never writes a second history
// entry.
//
// An unexpected error defensively fails the order so the cause lands in the
// durable history ledger, then the error is returned for the queue's retry
// policy; a retry that finds the order FAILED is a no-op.
func (h *DeliverOrderCommandHandler) Handle(ctx context.Context, cmd DeliverOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	current, err := h.currentStatus(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if current != order.Shipped {
		h.logSkip(ctx, cmd.OrderID(), current)
		return nil
	}

	// Simulated last-mile delivery.
	if err = simulateWork(ctx, h.cfg.DeliveryDelayMin, h.cfg.DeliveryDelayMax); err != nil {
		return err
	}

	advanced, current, err := advanceOrder(ctx, h.uowFactory.Create(), cmd.OrderID(),
		order.Shipped, order.Delivered, "Order has been delivered.", 0)
	if err != nil {
		markOrderFailed(ctx, h.uowFactory.Create(), cmd.OrderID(),
			"Order delivery failed unexpectedly.", h.logger)
		return err
	}
	if !advanced {
		h.logSkip(ctx, cmd.OrderID(), current)
		return nil
	}

	h.logger.InfoContext(ctx, "order delivered",
		slog.String("order_id", cmd.OrderID().String()))
	return nil
}

func (h *DeliverOrderCommandHandler) currentStatus(ctx context.Context, orderID kernel.UUID) (order.Status, error) {
	uow := h.uowFactory.Create()

	o, err := uow.OrderRepository().Get(ctx, orderID)
	if err != nil {
		return order.Unknown, err
	}
	return o.Status(), nil
}

func (h *DeliverOrderCommandHandler) logSkip(ctx context.Context, orderID kernel.UUID, current order.Status) {
	h.logger.InfoContext(ctx, "skipping delivery stage",
		slog.String("order_id", orderID.String()),
		slog.String("status", current.String()),
		slog.String("expected", order.Shipped.String()))
}

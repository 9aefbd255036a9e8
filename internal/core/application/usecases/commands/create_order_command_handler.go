package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// CreateOrderCommandHandler handles the business logic for order creation.
// Creates the order in PENDING status with prices snapshotted from the
// catalog, then schedules the processing stage.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, queue, cfg, logger)
//	cmd, _ := NewCreateOrderCommand(orderID, "Alice Johnson", lines)
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
//	// Order is now persisted and the processing stage is scheduled
type CreateOrderCommandHandler struct {
	uowFactory CreateOrderUoWFactory
	queue      ports.TaskQueue
	cfg        Config
	logger     *slog.Logger
}

// NewCreateOrderCommandHandler creates a handler for order creation
// operations.
func NewCreateOrderCommandHandler(
	uowFactory CreateOrderUoWFactory,
	queue ports.TaskQueue,
	cfg Config,
	logger *slog.Logger,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		queue:      queue,
		cfg:        cfg,
		logger:     logger,
	}
}

// Handle processes the order creation command.
// Reads each requested product to capture its current price on the order
// line, persists the order atomically with its lines and creation history
// entry, and enqueues the processing task once the transaction commits.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
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

	productRepo := uow.ProductRepository()
	orderRepo := uow.OrderRepository()

	lines := make([]*order.Line, 0, len(cmd.Lines()))
	for _, input := range cmd.Lines() {
		product, err := productRepo.Get(ctx, input.ProductID)
		if err != nil {
			return err
		}

		line, err := order.NewLine(kernel.NewUUID(), product.ID(), input.Quantity, product.Price())
		if err != nil {
			return err
		}
		lines = append(lines, line)
	}

	newOrder, err := order.NewOrder(cmd.OrderID(), cmd.CustomerName(), lines, h.cfg.InitialDeadlineOffset)
	if err != nil {
		return err
	}

	if err = orderRepo.Add(ctx, newOrder); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	// The order is committed at this point. A lost first task is not fatal:
	// the stale sweeper fails orders whose deadline passes without progress.
	task := ports.Task{Kind: ports.TaskProcessOrder, OrderID: newOrder.ID()}
	if err = h.queue.Enqueue(ctx, task, 0); err != nil {
		h.logger.ErrorContext(ctx, "failed to schedule order processing",
			slog.String("order_id", newOrder.ID().String()), slog.Any("error", err))
	}

	return nil
}

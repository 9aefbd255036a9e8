package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/product"
	"fulfillment/internal/core/ports"
)

// ProcessOrderCommandHandler runs the processing stage of the pipeline:
// order validation, atomic inventory allocation across all lines, and
// packaging. On success it schedules the shipping stage; on stock shortage it
// fails the order terminally with a note naming every short item.
//
// The stage is split into short transactions (validate, allocate, package) so
// locks are held only around the inventory decrement, with the simulated
// external latency outside any transaction.
type ProcessOrderCommandHandler struct {
	uowFactory ProcessOrderUoWFactory
	queue      ports.TaskQueue
	cfg        Config
	logger     *slog.Logger
}

// NewProcessOrderCommandHandler creates a handler for the processing stage.
func NewProcessOrderCommandHandler(
	uowFactory ProcessOrderUoWFactory,
	queue ports.TaskQueue,
	cfg Config,
	logger *slog.Logger,
) ProcessOrderCommandHandler {
	return ProcessOrderCommandHandler{
		uowFactory: uowFactory,
		queue:      queue,
		cfg:        cfg,
		logger:     logger,
	}
}

// Handle processes one order through validation, allocation, and packaging.
//
// The PENDING precondition makes duplicate task delivery a logged no-op. A
// stock shortage is a business outcome: the order is failed with a note
// listing the short items and the handler returns nil so the task is not
// retried. Unexpected errors fail the order defensively and are returned for
// the queue's retry policy.
func (h *ProcessOrderCommandHandler) Handle(ctx context.Context, cmd ProcessOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	current, err := h.currentStatus(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if current != order.Pending {
		h.logSkip(ctx, cmd.OrderID(), current, order.Pending)
		return nil
	}

	// Simulated validation and payment checks. The remainder of the stage
	// window is spent on packaging below.
	if err = simulateWork(ctx, h.cfg.ProcessingDelayMin/2, h.cfg.ProcessingDelayMax/2); err != nil {
		return err
	}

	advanced, current, err := advanceOrder(ctx, h.uowFactory.Create(), cmd.OrderID(),
		order.Pending, order.Processing, "Order validation started.", h.cfg.ProcessingDeadlineOffset())
	if err != nil {
		markOrderFailed(ctx, h.uowFactory.Create(), cmd.OrderID(),
			"Order processing failed unexpectedly.", h.logger)
		return err
	}
	if !advanced {
		h.logSkip(ctx, cmd.OrderID(), current, order.Pending)
		return nil
	}

	shortages, err := h.allocateInventory(ctx, cmd.OrderID())
	if err != nil {
		markOrderFailed(ctx, h.uowFactory.Create(), cmd.OrderID(),
			"Order processing failed unexpectedly.", h.logger)
		return err
	}
	if len(shortages) > 0 {
		notes := "Insufficient stock for items: " + strings.Join(shortages, ", ")
		markOrderFailed(ctx, h.uowFactory.Create(), cmd.OrderID(), notes, h.logger)
		h.logger.InfoContext(ctx, "order failed on stock shortage",
			slog.String("order_id", cmd.OrderID().String()),
			slog.Int("short_items", len(shortages)))
		return nil
	}

	advanced, current, err = advanceOrder(ctx, h.uowFactory.Create(), cmd.OrderID(),
		order.Processing, order.Packaging,
		"Inventory allocated, order is being packaged.", h.cfg.PackagingDeadlineOffset())
	if err != nil {
		markOrderFailed(ctx, h.uowFactory.Create(), cmd.OrderID(),
			"Order processing failed unexpectedly.", h.logger)
		return err
	}
	if !advanced {
		h.logSkip(ctx, cmd.OrderID(), current, order.Processing)
		return nil
	}

	// Simulated packaging work.
	if err = simulateWork(ctx, h.cfg.ProcessingDelayMin/2, h.cfg.ProcessingDelayMax/2); err != nil {
		return err
	}

	task := ports.Task{Kind: ports.TaskShipOrder, OrderID: cmd.OrderID()}
	if err = h.queue.Enqueue(ctx, task, 0); err != nil {
		h.logger.ErrorContext(ctx, "failed to schedule order shipping",
			slog.String("order_id", cmd.OrderID().String()), slog.Any("error", err))
	}

	return nil
}

// allocateInventory decrements stock for every order line inside a single
// transaction. It collects a human-readable description of every short line;
// any shortage leaves the transaction uncommitted so the deferred rollback
// undoes the decrements already applied for satisfiable lines.
func (h *ProcessOrderCommandHandler) allocateInventory(
	ctx context.Context,
	orderID kernel.UUID,
) ([]string, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	inventoryRepo := uow.InventoryRepository()
	productRepo := uow.ProductRepository()

	o, err := orderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var shortages []string
	for _, line := range o.Lines() {
		allocErr := inventoryRepo.Allocate(ctx, line.ProductID(), line.Quantity())

		var shortageErr *product.InsufficientStockError
		switch {
		case errors.As(allocErr, &shortageErr):
			shortages = append(shortages,
				h.describeShortage(ctx, productRepo, line.ProductID(), shortageErr))
		case allocErr != nil:
			return nil, allocErr
		}
	}

	if len(shortages) > 0 {
		return shortages, nil
	}

	return nil, uow.Commit(ctx)
}

// describeShortage names the short product for the failure note, falling back
// to the raw product id when the catalog row cannot be read.
func (h *ProcessOrderCommandHandler) describeShortage(
	ctx context.Context,
	productRepo ports.ProductRepository,
	productID kernel.UUID,
	shortageErr *product.InsufficientStockError,
) string {
	name := productID.String()
	if p, err := productRepo.Get(ctx, productID); err == nil {
		name = p.Name()
	}
	return fmt.Sprintf("%s (requested: %d, available: %d)",
		name, shortageErr.Requested, shortageErr.Available)
}

func (h *ProcessOrderCommandHandler) currentStatus(ctx context.Context, orderID kernel.UUID) (order.Status, error) {
	uow := h.uowFactory.Create()

	o, err := uow.OrderRepository().Get(ctx, orderID)
	if err != nil {
		return order.Unknown, err
	}
	return o.Status(), nil
}

func (h *ProcessOrderCommandHandler) logSkip(ctx context.Context, orderID kernel.UUID, current, expected order.Status) {
	h.logger.InfoContext(ctx, "skipping processing stage",
		slog.String("order_id", orderID.String()),
		slog.String("status", current.String()),
		slog.String("expected", expected.String()))
}

package commands_test

import (
	"errors"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/product"
	"fulfillment/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// processMocks wires a ProcessOrderUoW that hands out the same repositories
// for every short transaction the processing stage opens.
type processMocks struct {
	orderRepo     *MockOrderRepository
	productRepo   *MockProductRepository
	inventoryRepo *MockInventoryRepository
	uow           *MockProcessOrderUoW
	factory       *MockProcessOrderUoWFactory
	queue         *MockTaskQueue
}

func newProcessMocks() *processMocks {
	m := &processMocks{
		orderRepo:     new(MockOrderRepository),
		productRepo:   new(MockProductRepository),
		inventoryRepo: new(MockInventoryRepository),
		uow:           new(MockProcessOrderUoW),
		factory:       new(MockProcessOrderUoWFactory),
		queue:         new(MockTaskQueue),
	}
	m.uow.On("Begin", mock.Anything).Return(nil)
	m.uow.On("Commit", mock.Anything).Return(nil)
	m.uow.On("Rollback", mock.Anything).Return(nil)
	m.uow.On("OrderRepository").Return(m.orderRepo)
	m.uow.On("ProductRepository").Return(m.productRepo)
	m.uow.On("InventoryRepository").Return(m.inventoryRepo)
	m.factory.On("Create").Return(m.uow)
	return m
}

func (m *processMocks) handler() commands.ProcessOrderCommandHandler {
	return commands.NewProcessOrderCommandHandler(m.factory, m.queue, testConfig(), testLogger())
}

func TestProcessOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	o := makeOrder(t, order.Pending)
	productID := o.Lines()[0].ProductID()
	cmd, err := commands.NewProcessOrderCommand(o.ID())
	require.NoError(t, err)

	m := newProcessMocks()
	m.orderRepo.On("Get", mock.Anything, o.ID()).Return(o, nil)
	m.orderRepo.On("Update", mock.Anything, o).Return(nil).Twice()
	m.inventoryRepo.On("Allocate", mock.Anything, productID, 2).Return(nil).Once()
	m.queue.On("Enqueue", mock.Anything,
		ports.Task{Kind: ports.TaskShipOrder, OrderID: o.ID()}, time.Duration(0)).
		Return(nil).Once()

	h := m.handler()
	require.NoError(t, h.Handle(ctx, cmd))

	// PENDING -> PROCESSING -> PACKAGING, one history entry per transition.
	require.Equal(t, order.Packaging, o.Status())
	require.Len(t, o.History(), 3)
	require.NotNil(t, o.ExpectedNextDeadline())

	m.orderRepo.AssertExpectations(t)
	m.inventoryRepo.AssertExpectations(t)
	m.queue.AssertExpectations(t)
}

func TestProcessOrderCommandHandler_Handle_SkipsNonPendingOrder(t *testing.T) {
	ctx := t.Context()
	o := makeOrder(t, order.Packaging)
	cmd, err := commands.NewProcessOrderCommand(o.ID())
	require.NoError(t, err)

	m := newProcessMocks()
	m.orderRepo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()

	// Duplicate delivery of the processing task is a no-op.
	h := m.handler()
	require.NoError(t, h.Handle(ctx, cmd))

	require.Equal(t, order.Packaging, o.Status())
	m.orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	m.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessOrderCommandHandler_Handle_InsufficientStock(t *testing.T) {
	ctx := t.Context()
	o := makeOrder(t, order.Pending)
	productID := o.Lines()[0].ProductID()
	cmd, err := commands.NewProcessOrderCommand(o.ID())
	require.NoError(t, err)

	catalogProduct, err := product.NewProduct(productID, "SKU-001", "Widget", decimal.NewFromInt(10))
	require.NoError(t, err)

	m := newProcessMocks()
	m.orderRepo.On("Get", mock.Anything, o.ID()).Return(o, nil)
	m.orderRepo.On("Update", mock.Anything, o).Return(nil).Twice() // PROCESSING, then FAILED
	m.inventoryRepo.On("Allocate", mock.Anything, productID, 2).
		Return(product.NewInsufficientStockError(productID, 2, 1)).Once()
	m.productRepo.On("Get", mock.Anything, productID).Return(catalogProduct, nil).Once()

	// Shortage is a business outcome: the order fails terminally and the
	// handler reports success so the task is not retried.
	h := m.handler()
	require.NoError(t, h.Handle(ctx, cmd))

	require.Equal(t, order.Failed, o.Status())
	require.Nil(t, o.ExpectedNextDeadline())

	history := o.History()
	last := history[len(history)-1]
	require.Equal(t, "Insufficient stock for items: Widget (requested: 2, available: 1)", last.Notes())

	m.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
	m.inventoryRepo.AssertExpectations(t)
}

func TestProcessOrderCommandHandler_Handle_AllocationFailureIsRetryable(t *testing.T) {
	ctx := t.Context()
	o := makeOrder(t, order.Pending)
	productID := o.Lines()[0].ProductID()
	cmd, err := commands.NewProcessOrderCommand(o.ID())
	require.NoError(t, err)

	allocErr := errors.New("connection reset")

	m := newProcessMocks()
	m.orderRepo.On("Get", mock.Anything, o.ID()).Return(o, nil)
	m.orderRepo.On("Update", mock.Anything, o).Return(nil).Twice() // PROCESSING, then defensive FAILED
	m.inventoryRepo.On("Allocate", mock.Anything, productID, 2).Return(allocErr).Once()

	h := m.handler()
	require.ErrorIs(t, h.Handle(ctx, cmd), allocErr)

	require.Equal(t, order.Failed, o.Status())
	m.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessOrderCommandHandler_Handle_TransientAdvanceFailureMarksOrderFailed(t *testing.T) {
	ctx := t.Context()
	o := makeOrder(t, order.Pending)
	cmd, err := commands.NewProcessOrderCommand(o.ID())
	require.NoError(t, err)

	updateErr := errors.New("connection reset")

	m := newProcessMocks()
	m.orderRepo.On("Get", mock.Anything, o.ID()).Return(o, nil)
	m.orderRepo.On("Update", mock.Anything, o).Return(updateErr).Once()
	m.orderRepo.On("Update", mock.Anything, o).Return(nil).Once() // defensive FAILED

	// The failure cause must land in the durable history ledger before the
	// error goes back to the queue for retry.
	h := m.handler()
	require.ErrorIs(t, h.Handle(ctx, cmd), updateErr)

	require.Equal(t, order.Failed, o.Status())
	require.Nil(t, o.ExpectedNextDeadline())

	history := o.History()
	last := history[len(history)-1]
	require.Equal(t, "Order processing failed unexpectedly.", last.Notes())

	m.inventoryRepo.AssertNotCalled(t, "Allocate", mock.Anything, mock.Anything, mock.Anything)
	m.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
	m.orderRepo.AssertExpectations(t)
}

func TestProcessOrderCommandHandler_Handle_OrderNotFound(t *testing.T) {
	ctx := t.Context()
	id := kernel.NewUUID()
	cmd, err := commands.NewProcessOrderCommand(id)
	require.NoError(t, err)

	notFound := errors.New("order not found")

	m := newProcessMocks()
	m.orderRepo.On("Get", mock.Anything, id).Return(nil, notFound).Once()

	h := m.handler()
	require.ErrorIs(t, h.Handle(ctx, cmd), notFound)
}

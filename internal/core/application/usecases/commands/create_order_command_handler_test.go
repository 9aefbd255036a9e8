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
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	productID := kernel.NewUUID()
	catalogProduct, err := product.NewProduct(productID, "SKU-001", "Widget", decimal.NewFromInt(10))
	require.NoError(t, err)

	id := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(id, "Alice Johnson", []commands.LineInput{
		{ProductID: productID, Quantity: 2},
	})
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	uow := new(MockCreateOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("ProductRepository").Return(productRepo).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		productRepo.On("Get", mock.Anything, productID).Return(catalogProduct, nil).Once(),
		orderRepo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockCreateOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	queue := new(MockTaskQueue)
	queue.On("Enqueue", mock.Anything,
		ports.Task{Kind: ports.TaskProcessOrder, OrderID: id}, time.Duration(0)).
		Return(nil).Once()

	h := commands.NewCreateOrderCommandHandler(factory, queue, testConfig(), testLogger())
	require.NoError(t, h.Handle(ctx, cmd))

	// The persisted order is PENDING and carries the catalog price snapshot.
	added := orderRepo.Calls[0].Arguments.Get(1).(*order.Order)
	require.Equal(t, order.Pending, added.Status())
	require.NotNil(t, added.ExpectedNextDeadline())
	require.Len(t, added.Lines(), 1)
	require.True(t, added.Lines()[0].PriceAtPurchase().Equal(decimal.NewFromInt(10)))
	require.Len(t, added.History(), 1)

	orderRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
	queue.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.CreateOrderCommand{} // not constructed properly
	factory := new(MockCreateOrderUoWFactory)
	h := commands.NewCreateOrderCommandHandler(factory, new(MockTaskQueue), testConfig(), testLogger())
	require.Error(t, h.Handle(ctx, cmd))
}

func TestCreateOrderCommandHandler_Handle_UnknownProduct(t *testing.T) {
	ctx := t.Context()
	productID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), "Alice Johnson", []commands.LineInput{
		{ProductID: productID, Quantity: 1},
	})
	require.NoError(t, err)

	productRepo := new(MockProductRepository)
	uow := new(MockCreateOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("ProductRepository").Return(productRepo).Once(),
		uow.On("OrderRepository").Return(new(MockOrderRepository)).Once(),
		productRepo.On("Get", mock.Anything, productID).
			Return(nil, errs.NewObjectNotFoundError("productID", productID)).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockCreateOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	queue := new(MockTaskQueue)
	h := commands.NewCreateOrderCommandHandler(factory, queue, testConfig(), testLogger())
	require.ErrorIs(t, h.Handle(ctx, cmd), errs.ErrObjectNotFound)

	// Nothing is scheduled when creation fails.
	queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_EnqueueErrorIsNotFatal(t *testing.T) {
	ctx := t.Context()
	productID := kernel.NewUUID()
	catalogProduct, err := product.NewProduct(productID, "SKU-001", "Widget", decimal.NewFromInt(10))
	require.NoError(t, err)

	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), "Alice Johnson", []commands.LineInput{
		{ProductID: productID, Quantity: 1},
	})
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	uow := new(MockCreateOrderUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ProductRepository").Return(productRepo).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	productRepo.On("Get", mock.Anything, productID).Return(catalogProduct, nil).Once()
	orderRepo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockCreateOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	queue := new(MockTaskQueue)
	queue.On("Enqueue", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("queue unavailable")).Once()

	// The order is committed; a lost first task is the sweeper's problem.
	h := commands.NewCreateOrderCommandHandler(factory, queue, testConfig(), testLogger())
	require.NoError(t, h.Handle(ctx, cmd))

	uow.AssertExpectations(t)
	queue.AssertExpectations(t)
}

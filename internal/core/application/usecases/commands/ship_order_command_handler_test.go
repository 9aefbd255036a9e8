package commands_test

import (
	"errors"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestShipOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	o := makeOrder(t, order.Packaging)
	cmd, err := commands.NewShipOrderCommand(o.ID())
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		repo.On("Update", mock.Anything, o).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	queue := new(MockTaskQueue)
	queue.On("Enqueue", mock.Anything,
		ports.Task{Kind: ports.TaskDeliverOrder, OrderID: o.ID()}, time.Duration(0)).
		Return(nil).Once()

	h := commands.NewShipOrderCommandHandler(factory, queue, testConfig(), testLogger())
	require.NoError(t, h.Handle(ctx, cmd))

	require.Equal(t, order.Shipped, o.Status())
	require.NotNil(t, o.ExpectedNextDeadline())

	history := o.History()
	last := history[len(history)-1]
	require.Equal(t, "Order has been shipped.", last.Notes())
	require.Equal(t, order.Packaging, *last.FromStatus())

	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	queue.AssertExpectations(t)
}

func TestShipOrderCommandHandler_Handle_TransientFailureMarksOrderFailed(t *testing.T) {
	ctx := t.Context()
	o := makeOrder(t, order.Packaging)
	cmd, err := commands.NewShipOrderCommand(o.ID())
	require.NoError(t, err)

	updateErr := errors.New("connection reset")

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit", mock.Anything).Return(nil)
	uow.On("Rollback", mock.Anything).Return(nil)
	uow.On("OrderRepository").Return(repo)
	repo.On("Get", mock.Anything, o.ID()).Return(o, nil)
	repo.On("Update", mock.Anything, o).Return(updateErr).Once()
	repo.On("Update", mock.Anything, o).Return(nil).Once() // defensive FAILED

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	queue := new(MockTaskQueue)
	h := commands.NewShipOrderCommandHandler(factory, queue, testConfig(), testLogger())

	// The failure cause must land in the durable history ledger before the
	// error goes back to the queue for retry.
	require.ErrorIs(t, h.Handle(ctx, cmd), updateErr)

	require.Equal(t, order.Failed, o.Status())
	require.Nil(t, o.ExpectedNextDeadline())

	history := o.History()
	last := history[len(history)-1]
	require.Equal(t, "Order shipping failed unexpectedly.", last.Notes())

	queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestShipOrderCommandHandler_Handle_SkipsNonPackagingOrder(t *testing.T) {
	ctx := t.Context()
	o := makeOrder(t, order.Shipped)
	cmd, err := commands.NewShipOrderCommand(o.ID())
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	queue := new(MockTaskQueue)
	h := commands.NewShipOrderCommandHandler(factory, queue, testConfig(), testLogger())
	require.NoError(t, h.Handle(ctx, cmd))

	require.Equal(t, order.Shipped, o.Status())
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
}

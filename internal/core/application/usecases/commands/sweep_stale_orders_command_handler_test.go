package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSweepStaleOrdersCommandHandler_Handle_FailsStaleOrders(t *testing.T) {
	ctx := t.Context()
	stalePending := makeOrder(t, order.Pending)
	staleShipped := makeOrder(t, order.Shipped)
	cmd := commands.NewSweepStaleOrdersCommand()

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetAllStale", mock.Anything, mock.Anything).
			Return([]*order.Order{stalePending, staleShipped}, nil).Once(),
		repo.On("Update", mock.Anything, stalePending).Return(nil).Once(),
		repo.On("Update", mock.Anything, staleShipped).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewSweepStaleOrdersCommandHandler(factory, testLogger())
	require.NoError(t, h.Handle(ctx, cmd))

	for _, o := range []*order.Order{stalePending, staleShipped} {
		require.Equal(t, order.Failed, o.Status())
		require.Nil(t, o.ExpectedNextDeadline())

		history := o.History()
		last := history[len(history)-1]
		require.Contains(t, last.Notes(), "automatically marked as FAILED")
	}

	// The note names the status the order stalled in.
	pendingHistory := stalePending.History()
	require.Contains(t, pendingHistory[len(pendingHistory)-1].Notes(), "PENDING")
	shippedHistory := staleShipped.History()
	require.Contains(t, shippedHistory[len(shippedHistory)-1].Notes(), "SHIPPED")

	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestSweepStaleOrdersCommandHandler_Handle_SkipsOrdersAdvancedDuringSweep(t *testing.T) {
	ctx := t.Context()
	racedOrder := makeOrder(t, order.Shipped)
	stalePending := makeOrder(t, order.Pending)
	cmd := commands.NewSweepStaleOrdersCommand()

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetAllStale", mock.Anything, mock.Anything).
			Return([]*order.Order{racedOrder, stalePending}, nil).Once(),
		// A delivery stage advanced this order between the stale read and
		// the write: the conditional update rejects the overwrite.
		repo.On("Update", mock.Anything, racedOrder).
			Return(errs.NewConcurrentModificationError("order", racedOrder.ID().String())).Once(),
		repo.On("Update", mock.Anything, stalePending).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	// The conflict is not an error: the sweep skips the order and still
	// commits the rest of the batch.
	h := commands.NewSweepStaleOrdersCommandHandler(factory, testLogger())
	require.NoError(t, h.Handle(ctx, cmd))

	require.Equal(t, order.Failed, stalePending.Status())

	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestSweepStaleOrdersCommandHandler_Handle_NothingStale(t *testing.T) {
	ctx := t.Context()
	cmd := commands.NewSweepStaleOrdersCommand()

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetAllStale", mock.Anything, mock.Anything).
			Return([]*order.Order{}, nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewSweepStaleOrdersCommandHandler(factory, testLogger())
	require.NoError(t, h.Handle(ctx, cmd))

	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

package commands_test

import (
	"context"
	"log/slog"
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

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllStale(ctx context.Context, asOf time.Time) ([]*order.Order, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockProductRepository struct{ mock.Mock }

func (m *MockProductRepository) Add(ctx context.Context, p *product.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Get(ctx context.Context, id kernel.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

type MockInventoryRepository struct{ mock.Mock }

func (m *MockInventoryRepository) Add(ctx context.Context, r *product.InventoryRecord) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockInventoryRepository) Get(ctx context.Context, productID kernel.UUID) (*product.InventoryRecord, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) Allocate(ctx context.Context, productID kernel.UUID, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockCreateOrderUoW struct{ MockOrderUoW }

func (m *MockCreateOrderUoW) ProductRepository() ports.ProductRepository {
	args := m.Called()
	return args.Get(0).(ports.ProductRepository)
}

type MockCreateOrderUoWFactory struct{ mock.Mock }

func (m *MockCreateOrderUoWFactory) Create() commands.CreateOrderUoW {
	args := m.Called()
	return args.Get(0).(commands.CreateOrderUoW)
}

type MockProcessOrderUoW struct{ MockOrderUoW }

func (m *MockProcessOrderUoW) ProductRepository() ports.ProductRepository {
	args := m.Called()
	return args.Get(0).(ports.ProductRepository)
}

func (m *MockProcessOrderUoW) InventoryRepository() ports.InventoryRepository {
	args := m.Called()
	return args.Get(0).(ports.InventoryRepository)
}

type MockProcessOrderUoWFactory struct{ mock.Mock }

func (m *MockProcessOrderUoWFactory) Create() commands.ProcessOrderUoW {
	args := m.Called()
	return args.Get(0).(commands.ProcessOrderUoW)
}

type MockTaskQueue struct{ mock.Mock }

func (m *MockTaskQueue) Enqueue(ctx context.Context, task ports.Task, delay time.Duration) error {
	args := m.Called(ctx, task, delay)
	return args.Error(0)
}

// testConfig keeps simulated delays in the low milliseconds so handler tests
// stay fast while the derived deadline offsets remain positive.
func testConfig() commands.Config {
	return commands.Config{
		ProcessingDelayMax:    2 * time.Millisecond,
		ShippingDelayMax:      2 * time.Millisecond,
		DeliveryDelayMax:      2 * time.Millisecond,
		InitialDeadlineOffset: time.Minute,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// makeOrder builds an order with a single two-unit line and walks it along
// the happy path until it reaches target.
func makeOrder(t *testing.T, target order.Status) *order.Order {
	t.Helper()

	line, err := order.NewLine(kernel.NewUUID(), kernel.NewUUID(), 2, decimal.NewFromInt(10))
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), "Alice Johnson", []*order.Line{line}, time.Minute)
	require.NoError(t, err)

	for _, next := range []order.Status{order.Processing, order.Packaging, order.Shipped, order.Delivered} {
		if o.Status() == target {
			break
		}
		offset := time.Minute
		if next == order.Delivered {
			offset = 0
		}
		require.NoError(t, o.Advance(next, "test transition", offset))
	}
	require.Equal(t, target, o.Status())

	return o
}

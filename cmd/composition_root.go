package cmd

import (
	"context"
	"log/slog"

	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/taskqueue"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"

	"gorm.io/gorm"
)

// CompositionRoot wires the application together: the unit of work factory,
// the task dispatcher with its stage handlers, and the query side. Stage
// handlers are registered on the dispatcher at construction, so enqueued
// tasks always find their handler.
type CompositionRoot struct {
	gormDB      *gorm.DB
	uowFactory  postgres.GormUnitOfWorkFactory
	dispatcher  *taskqueue.Dispatcher
	pipelineCfg commands.Config
	logger      *slog.Logger
}

// NewCompositionRoot builds the object graph and registers the pipeline
// stage handlers on the task dispatcher.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) *CompositionRoot {
	root := &CompositionRoot{
		gormDB:      gormDB,
		uowFactory:  *postgres.NewGormUnitOfWorkFactory(gormDB),
		dispatcher:  taskqueue.NewDispatcher(logger),
		pipelineCfg: config.Pipeline,
		logger:      logger,
	}
	root.registerTaskHandlers()
	return root
}

// Shutdown stops the dispatcher, waiting for in-flight stage tasks.
func (c *CompositionRoot) Shutdown() {
	c.dispatcher.Stop()
}

func (c *CompositionRoot) registerTaskHandlers() {
	processHandler := c.CreateProcessOrderCommandHandler()
	c.dispatcher.Register(ports.TaskProcessOrder,
		func(ctx context.Context, orderID kernel.UUID) error {
			cmd, err := commands.NewProcessOrderCommand(orderID)
			if err != nil {
				return err
			}
			return processHandler.Handle(ctx, cmd)
		}, taskqueue.DefaultRetryPolicy())

	shipHandler := c.CreateShipOrderCommandHandler()
	c.dispatcher.Register(ports.TaskShipOrder,
		func(ctx context.Context, orderID kernel.UUID) error {
			cmd, err := commands.NewShipOrderCommand(orderID)
			if err != nil {
				return err
			}
			return shipHandler.Handle(ctx, cmd)
		}, taskqueue.DefaultRetryPolicy())

	deliverHandler := c.CreateDeliverOrderCommandHandler()
	c.dispatcher.Register(ports.TaskDeliverOrder,
		func(ctx context.Context, orderID kernel.UUID) error {
			cmd, err := commands.NewDeliverOrderCommand(orderID)
			if err != nil {
				return err
			}
			return deliverHandler.Handle(ctx, cmd)
		}, taskqueue.DefaultRetryPolicy())
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.CreateOrderUoWFactory = FuncCreateOrderUoWFactory(func() commands.CreateOrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.dispatcher, c.pipelineCfg, c.logger)
}

func (c *CompositionRoot) CreateProcessOrderCommandHandler() commands.ProcessOrderCommandHandler {
	var f commands.ProcessOrderUoWFactory = FuncProcessOrderUoWFactory(func() commands.ProcessOrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewProcessOrderCommandHandler(f, c.dispatcher, c.pipelineCfg, c.logger)
}

func (c *CompositionRoot) CreateShipOrderCommandHandler() commands.ShipOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewShipOrderCommandHandler(f, c.dispatcher, c.pipelineCfg, c.logger)
}

func (c *CompositionRoot) CreateDeliverOrderCommandHandler() commands.DeliverOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewDeliverOrderCommandHandler(f, c.pipelineCfg, c.logger)
}

func (c *CompositionRoot) CreateSweepStaleOrdersCommandHandler() commands.SweepStaleOrdersCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSweepStaleOrdersCommandHandler(f, c.logger)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderHistoryQueryHandler() queries.GetOrderHistoryQueryHandler {
	return queries.NewGetOrderHistoryQueryHandler(c.gormDB)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncCreateOrderUoWFactory func() commands.CreateOrderUoW

func (f FuncCreateOrderUoWFactory) Create() commands.CreateOrderUoW {
	return f()
}

type FuncProcessOrderUoWFactory func() commands.ProcessOrderUoW

func (f FuncProcessOrderUoWFactory) Create() commands.ProcessOrderUoW {
	return f()
}

// Package commands contains the business operations that move orders through
// the fulfillment pipeline. Each pipeline stage (process, ship, deliver) is a
// command handler executed as an independently scheduled, retryable unit of
// work; the stale-order sweep is a command triggered on a fixed interval.
// All commands follow a consistent pattern: validation, transaction
// management via a unit of work, and persistence.
package commands

import (
	"context"

	"fulfillment/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command
// handlers. Handlers depend only on the repositories they actually touch.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a
	// transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// ProductRepoFactory provides access to the product repository within a
	// transaction.
	ProductRepoFactory interface {
		ProductRepository() ports.ProductRepository
	}

	// InventoryRepoFactory provides access to the inventory repository
	// within a transaction.
	InventoryRepoFactory interface {
		InventoryRepository() ports.InventoryRepository
	}

	// OrderUoW manages transactions for order-only operations.
	// Used by the ship and deliver stages and the stale-order sweep.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// CreateOrderUoW manages transactions for order creation, which reads
	// products to capture price snapshots.
	CreateOrderUoW interface {
		TxManager
		OrderRepoFactory
		ProductRepoFactory
	}

	// CreateOrderUoWFactory creates new creation unit of work instances.
	CreateOrderUoWFactory interface {
		Create() CreateOrderUoW
	}

	// ProcessOrderUoW manages transactions for the processing stage, which
	// coordinates the order with the inventory ledger and names products in
	// failure notes.
	ProcessOrderUoW interface {
		TxManager
		OrderRepoFactory
		ProductRepoFactory
		InventoryRepoFactory
	}

	// ProcessOrderUoWFactory creates new processing unit of work instances.
	ProcessOrderUoWFactory interface {
		Create() ProcessOrderUoW
	}
)

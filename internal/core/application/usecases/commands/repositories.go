// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"fulfillment/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// ShipmentRepoFactory provides access to the shipment repository within a transaction.
	ShipmentRepoFactory interface {
		ShipmentRepository() ports.ShipmentRepository
	}

	// ShelfRepoFactory provides access to the shelf repository within a transaction.
	ShelfRepoFactory interface {
		ShelfRepository() ports.ShelfRepository
	}

	// ShipmentUoW manages transactions spanning orders and shipments.
	// Used by shipment creation and tracking event processing.
	ShipmentUoW interface {
		TxManager
		OrderRepoFactory
		ShipmentRepoFactory
	}

	// ShipmentUoWFactory creates new shipment unit of work instances.
	ShipmentUoWFactory interface {
		Create() ShipmentUoW
	}

	// ShelfUoW manages transactions spanning orders and shelves.
	// Used by shelf assignment and pickup confirmation.
	ShelfUoW interface {
		TxManager
		OrderRepoFactory
		ShelfRepoFactory
	}

	// ShelfUoWFactory creates new shelf unit of work instances.
	ShelfUoWFactory interface {
		Create() ShelfUoW
	}

	// FulfillmentUoW manages transactions across all three aggregates.
	// Used by the stale pickup sweep, which resolves assignments into shipments.
	FulfillmentUoW interface {
		TxManager
		OrderRepoFactory
		ShipmentRepoFactory
		ShelfRepoFactory
	}

	// FulfillmentUoWFactory creates new cross-aggregate unit of work instances.
	FulfillmentUoWFactory interface {
		Create() FulfillmentUoW
	}
)

package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"
)

// ShipmentCreatedEvent is published after a shipment label has been purchased
// and the shipment committed.
type ShipmentCreatedEvent struct {
	ShipmentID     kernel.UUID
	OrderIDs       []kernel.UUID
	Carrier        string
	Service        string
	TrackingNumber string
	CostCents      int64
	Forced         bool
	OccurredAt     time.Time
}

// ShipmentStatusChangedEvent is published whenever a tracking event advances
// or overrides a shipment's status.
type ShipmentStatusChangedEvent struct {
	ShipmentID kernel.UUID
	Previous   shipment.Status
	Current    shipment.Status
	OccurredAt time.Time
}

// PickupAssignedEvent is published after an order is placed on a shelf slot.
type PickupAssignedEvent struct {
	AssignmentID kernel.UUID
	ShelfID      kernel.UUID
	OrderID      kernel.UUID
	OccurredAt   time.Time
}

// StalePickupEscalatedEvent is published when an uncollected shelf assignment
// crosses the stale age threshold, alerting operations without mutating state.
type StalePickupEscalatedEvent struct {
	AssignmentID kernel.UUID
	ShelfID      kernel.UUID
	OrderID      kernel.UUID
	AssignedAt   time.Time
	OccurredAt   time.Time
}

// EventPublisher is the outbound contract for domain event notifications.
// Publishing happens after commit; a publish failure must not fail the
// command that produced the event.
type EventPublisher interface {
	PublishShipmentCreated(ctx context.Context, event ShipmentCreatedEvent) error
	PublishShipmentStatusChanged(ctx context.Context, event ShipmentStatusChangedEvent) error
	PublishPickupAssigned(ctx context.Context, event PickupAssignedEvent) error
	PublishStalePickupEscalated(ctx context.Context, event StalePickupEscalatedEvent) error
}

package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"
)

// ShipmentRepository defines the persistence contract for shipment aggregates
// and their tracking event history.
type ShipmentRepository interface {
	// Add persists a new shipment aggregate to storage.
	Add(ctx context.Context, aggregate *shipment.Shipment) error

	// Update persists changes to an existing shipment aggregate.
	Update(ctx context.Context, aggregate *shipment.Shipment) error

	// Get retrieves a shipment aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error)

	// GetByTrackingNumber retrieves the shipment a carrier webhook refers to.
	GetByTrackingNumber(ctx context.Context, carrier, trackingNumber string) (*shipment.Shipment, error)

	// AddTrackingEvent appends one tracking event to the shipment's history.
	AddTrackingEvent(ctx context.Context, event *shipment.TrackingEvent) error
}

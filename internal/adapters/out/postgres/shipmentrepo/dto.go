// Package shipmentrepo provides data transfer objects and mapping functions for
// shipment persistence. A shipment row fans out to shipment_orders link rows
// (one per covered order) and accumulates tracking_events rows over its life.
package shipmentrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"

	"github.com/google/uuid"
)

// ShipmentDTO represents the database structure for persisting shipment aggregates.
// The carrier plus tracking number pair is unique: it is the webhook lookup key.
type ShipmentDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Carrier        string    `gorm:"uniqueIndex:idx_shipments_carrier_tracking"`
	Service        string
	TrackingNumber string `gorm:"uniqueIndex:idx_shipments_carrier_tracking"`
	TrackingURL    string
	LabelURL       string
	CostCents      int64
	Status         string `gorm:"index"`
	CreatedAt      time.Time
	DeliveredAt    *time.Time

	Orders []ShipmentOrderDTO `gorm:"foreignKey:ShipmentID;references:ID"`
}

// TableName specifies the database table name for shipment entities.
func (ShipmentDTO) TableName() string {
	return "shipments"
}

// ShipmentOrderDTO links one covered order to its shipment.
type ShipmentOrderDTO struct {
	ShipmentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Position   int
}

// TableName specifies the database table name for shipment-order links.
func (ShipmentOrderDTO) TableName() string {
	return "shipment_orders"
}

// TrackingEventDTO represents one received carrier status update, kept for audit
// whether or not it advanced the shipment.
type TrackingEventDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ShipmentID    uuid.UUID `gorm:"type:uuid;index"`
	CarrierStatus string
	MappedStatus  string
	OccurredAt    time.Time
	RawPayload    []byte
}

// TableName specifies the database table name for tracking events.
func (TrackingEventDTO) TableName() string {
	return "tracking_events"
}

// fromDomain converts a shipment domain aggregate to its database representation.
// The covered orders keep their aggregate ordering via the Position column.
func fromDomain(aggregate *shipment.Shipment) ShipmentDTO {
	orderIDs := aggregate.OrderIDs()
	links := make([]ShipmentOrderDTO, 0, len(orderIDs))
	for i, orderID := range orderIDs {
		links = append(links, ShipmentOrderDTO{
			ShipmentID: aggregate.ID().Bytes(),
			OrderID:    orderID.Bytes(),
			Position:   i,
		})
	}

	return ShipmentDTO{
		ID:             aggregate.ID().Bytes(),
		Carrier:        aggregate.Carrier(),
		Service:        aggregate.Service(),
		TrackingNumber: aggregate.TrackingNumber(),
		TrackingURL:    aggregate.TrackingURL(),
		LabelURL:       aggregate.LabelURL(),
		CostCents:      aggregate.CostCents(),
		Status:         aggregate.Status().String(),
		CreatedAt:      aggregate.CreatedAt(),
		DeliveredAt:    aggregate.DeliveredAt(),
		Orders:         links,
	}
}

// toDomain converts a database DTO to a shipment domain aggregate.
func toDomain(dto ShipmentDTO) (*shipment.Shipment, error) {
	orderIDs := make([]kernel.UUID, 0, len(dto.Orders))
	for _, link := range dto.Orders {
		orderID, err := kernel.UUIDFromBytes(link.OrderID[:])
		if err != nil {
			return nil, err
		}
		orderIDs = append(orderIDs, orderID)
	}

	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	return shipment.RestoreShipment(
		id,
		orderIDs,
		dto.Carrier,
		dto.Service,
		dto.TrackingNumber,
		dto.TrackingURL,
		dto.LabelURL,
		dto.CostCents,
		shipment.StatusFromString(dto.Status),
		dto.CreatedAt,
		dto.DeliveredAt,
	)
}

// eventFromDomain converts a tracking event to its database representation.
func eventFromDomain(event *shipment.TrackingEvent) TrackingEventDTO {
	return TrackingEventDTO{
		ID:            event.ID().Bytes(),
		ShipmentID:    event.ShipmentID().Bytes(),
		CarrierStatus: event.CarrierStatus(),
		MappedStatus:  event.MappedStatus().String(),
		OccurredAt:    event.OccurredAt(),
		RawPayload:    event.RawPayload(),
	}
}

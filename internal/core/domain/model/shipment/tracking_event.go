package shipment

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ErrTrackingEventIsNotConstructed is returned when a TrackingEvent was not
// created through the NewTrackingEvent constructor.
var ErrTrackingEventIsNotConstructed = errors.New(
	"TrackingEvent must be created via NewTrackingEvent constructor")

// TrackingEvent records one carrier status update received for a shipment.
// Events are retained for audit regardless of whether they advanced the
// shipment state; the raw carrier payload is kept verbatim.
type TrackingEvent struct {
	id            kernel.UUID
	shipmentID    kernel.UUID
	carrierStatus string
	mappedStatus  Status
	occurredAt    time.Time
	rawPayload    []byte

	guard guard.ConstructorGuard
}

// NewTrackingEvent creates an audit record for a received carrier event.
// mappedStatus may be Unknown for unrecognized carrier codes; unrecognized
// events are stored too, flagged for inspection.
func NewTrackingEvent(
	id kernel.UUID,
	shipmentID kernel.UUID,
	carrierStatus string,
	mappedStatus Status,
	occurredAt time.Time,
	rawPayload []byte,
) (*TrackingEvent, error) {
	e := &TrackingEvent{
		mappedStatus: mappedStatus,
		rawPayload:   rawPayload,
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		e.setID(id),
		e.setShipmentID(shipmentID),
		e.setCarrierStatus(carrierStatus),
		e.setOccurredAt(occurredAt),
	); err != nil {
		return nil, err
	}

	return e, nil
}

// Validate ensures the TrackingEvent was created through NewTrackingEvent.
func (e *TrackingEvent) Validate() error {
	if e == nil {
		return ErrTrackingEventIsNotConstructed
	}
	return e.guard.Validate(ErrTrackingEventIsNotConstructed)
}

// ID returns the event's unique identifier.
func (e *TrackingEvent) ID() kernel.UUID {
	return e.id
}

// ShipmentID returns the identifier of the shipment the event belongs to.
func (e *TrackingEvent) ShipmentID() kernel.UUID {
	return e.shipmentID
}

// CarrierStatus returns the carrier-native status code as received.
func (e *TrackingEvent) CarrierStatus() string {
	return e.carrierStatus
}

// MappedStatus returns the internal status the carrier code resolved to,
// or Unknown for unrecognized codes.
func (e *TrackingEvent) MappedStatus() Status {
	return e.mappedStatus
}

// OccurredAt returns the carrier-supplied event timestamp.
func (e *TrackingEvent) OccurredAt() time.Time {
	return e.occurredAt
}

// RawPayload returns the carrier payload as received, for audit.
func (e *TrackingEvent) RawPayload() []byte {
	return e.rawPayload
}

func (e *TrackingEvent) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	e.id = id
	return nil
}

func (e *TrackingEvent) setShipmentID(shipmentID kernel.UUID) error {
	if err := shipmentID.Validate(); err != nil {
		return err
	}
	e.shipmentID = shipmentID
	return nil
}

func (e *TrackingEvent) setCarrierStatus(carrierStatus string) error {
	if carrierStatus == "" {
		return errs.NewValueIsRequiredError("carrierStatus")
	}
	e.carrierStatus = carrierStatus
	return nil
}

func (e *TrackingEvent) setOccurredAt(occurredAt time.Time) error {
	if occurredAt.IsZero() {
		return errs.NewValueIsRequiredError("occurredAt")
	}
	e.occurredAt = occurredAt
	return nil
}

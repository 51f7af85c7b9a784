package order

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through the NewOrder or RestoreOrder factory functions.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrServiceLevelIsRequired is returned when an order carries no requested service level.
	ErrServiceLevelIsRequired = errs.NewValueIsRequiredError("serviceLevel")

	// ErrReadyAtIsRequired is returned when the production readiness timestamp is missing.
	ErrReadyAtIsRequired = errs.NewValueIsRequiredError("readyAt")
)

// Order is the aggregate root for a shippable order: an order that reached
// production readiness and awaits (or received) a ship-vs-pickup decision.
//
// The order directory owns the commercial order record; this aggregate only
// carries the routing-relevant projection of it: destination, parcel,
// requested service level, the pickup preference, and the fulfillment status.
//
// Invariants:
//   - Must have a valid identifier, destination and parcel
//   - Status transitions follow the fulfillment state machine in Status
//   - Can only be created through NewOrder or RestoreOrder
type Order struct {
	id              kernel.UUID
	destination     kernel.Address
	parcel          kernel.Parcel
	serviceLevel    string
	pickupRequested bool
	status          Status
	readyAt         time.Time

	guard guard.ConstructorGuard
}

// NewOrder creates a routing record for an order that production signalled as
// ready. The order starts in PendingRouting status.
//
// Parameters:
//   - id: unique order identifier (must be a valid UUID)
//   - destination: shipping destination (verified or not)
//   - parcel: physical package description
//   - serviceLevel: carrier service level requested by the customer
//   - pickupRequested: whether the customer explicitly asked for local pickup
//   - readyAt: production readiness timestamp
func NewOrder(
	id kernel.UUID,
	destination kernel.Address,
	parcel kernel.Parcel,
	serviceLevel string,
	pickupRequested bool,
	readyAt time.Time,
) (*Order, error) {
	o := &Order{
		status:          PendingRouting,
		pickupRequested: pickupRequested,
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setDestination(destination),
		o.setParcel(parcel),
		o.setServiceLevel(serviceLevel),
		o.setReadyAt(readyAt),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an Order aggregate from persistent storage,
// preserving its persisted status. The restored order behaves identically to
// one advanced through normal domain operations.
func RestoreOrder(
	id kernel.UUID,
	destination kernel.Address,
	parcel kernel.Parcel,
	serviceLevel string,
	pickupRequested bool,
	status Status,
	readyAt time.Time,
) (*Order, error) {
	o := &Order{
		pickupRequested: pickupRequested,
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setDestination(destination),
		o.setParcel(parcel),
		o.setServiceLevel(serviceLevel),
		o.setReadyAt(readyAt),
		o.setStatus(status),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Destination returns the shipping destination.
func (o *Order) Destination() kernel.Address {
	return o.destination
}

// Parcel returns the physical package description.
func (o *Order) Parcel() kernel.Parcel {
	return o.parcel
}

// ServiceLevel returns the carrier service level requested by the customer.
func (o *Order) ServiceLevel() string {
	return o.serviceLevel
}

// PickupRequested reports whether the customer explicitly asked for local pickup.
func (o *Order) PickupRequested() bool {
	return o.pickupRequested
}

// Status returns the current fulfillment status.
func (o *Order) Status() Status {
	return o.status
}

// ReadyAt returns the production readiness timestamp.
func (o *Order) ReadyAt() time.Time {
	return o.readyAt
}

// IsPendingRouting reports whether the order still awaits a routing decision.
func (o *Order) IsPendingRouting() bool {
	return o.status == PendingRouting
}

// AssignPickup commits the order to shelf pickup.
// Only legal from PendingRouting.
func (o *Order) AssignPickup() error {
	return o.transition(PickupAssigned)
}

// MarkShipPending records that a carrier label has been purchased for the order.
// Legal from PendingRouting (normal routing) and from PickupAssigned
// (forced conversion of a stale pickup).
func (o *Order) MarkShipPending() error {
	return o.transition(ShipPending)
}

// CompletePickup records that the customer collected the order. Final state.
func (o *Order) CompletePickup() error {
	return o.transition(PickupComplete)
}

// MarkShipped records carrier possession of the parcel.
func (o *Order) MarkShipped() error {
	return o.transition(Shipped)
}

// MarkDelivered records carrier-confirmed delivery.
func (o *Order) MarkDelivered() error {
	return o.transition(Delivered)
}

// MarkException applies the carrier exception override.
// Legal from ShipPending, Shipped and Delivered.
func (o *Order) MarkException() error {
	return o.transition(Exception)
}

func (o *Order) transition(next Status) error {
	newStatus, err := o.status.TransitionTo(next)
	if err != nil {
		return err
	}
	o.status = newStatus
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setDestination(destination kernel.Address) error {
	if err := destination.Validate(); err != nil {
		return err
	}
	o.destination = destination
	return nil
}

func (o *Order) setParcel(parcel kernel.Parcel) error {
	if err := parcel.Validate(); err != nil {
		return err
	}
	o.parcel = parcel
	return nil
}

func (o *Order) setServiceLevel(serviceLevel string) error {
	if serviceLevel == "" {
		return ErrServiceLevelIsRequired
	}
	o.serviceLevel = serviceLevel
	return nil
}

func (o *Order) setReadyAt(readyAt time.Time) error {
	if readyAt.IsZero() {
		return ErrReadyAtIsRequired
	}
	o.readyAt = readyAt
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

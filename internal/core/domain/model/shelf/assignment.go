package shelf

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	// ErrAssignmentIsNotConstructed is returned when an Assignment was not
	// created through the NewAssignment or RestoreAssignment factory functions.
	ErrAssignmentIsNotConstructed = errors.New(
		"Assignment must be created via NewAssignment or RestoreAssignment constructor")

	// ErrAssignmentAlreadyResolved is returned when confirming pickup or forcing
	// shipment on an assignment that has already been resolved either way.
	ErrAssignmentAlreadyResolved = errors.New("assignment is already resolved")
)

// Assignment records the occupancy of one shelf slot by one order, from
// assignment until either pickup confirmation or forced conversion to a
// shipment. The forcedShipmentID marker is persisted so a stale assignment is
// force-converted at most once across any number of monitor sweeps.
type Assignment struct {
	id               kernel.UUID
	shelfID          kernel.UUID
	orderID          kernel.UUID
	assignedAt       time.Time
	pickedUpAt       *time.Time
	forcedShipmentID *kernel.UUID

	guard guard.ConstructorGuard
}

// NewAssignment creates an active assignment of an order to a shelf slot.
func NewAssignment(id, shelfID, orderID kernel.UUID, assignedAt time.Time) (*Assignment, error) {
	return RestoreAssignment(id, shelfID, orderID, assignedAt, nil, nil)
}

// RestoreAssignment reconstructs an Assignment from persistent storage.
func RestoreAssignment(
	id, shelfID, orderID kernel.UUID,
	assignedAt time.Time,
	pickedUpAt *time.Time,
	forcedShipmentID *kernel.UUID,
) (*Assignment, error) {
	a := &Assignment{
		pickedUpAt:       pickedUpAt,
		forcedShipmentID: forcedShipmentID,
		guard:            guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		a.setID(id),
		a.setShelfID(shelfID),
		a.setOrderID(orderID),
		a.setAssignedAt(assignedAt),
	); err != nil {
		return nil, err
	}

	if forcedShipmentID != nil {
		if err := forcedShipmentID.Validate(); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Validate ensures the Assignment was properly constructed.
func (a *Assignment) Validate() error {
	if a == nil {
		return ErrAssignmentIsNotConstructed
	}
	return a.guard.Validate(ErrAssignmentIsNotConstructed)
}

// ID returns the assignment's unique identifier.
func (a *Assignment) ID() kernel.UUID {
	return a.id
}

// ShelfID returns the identifier of the occupied shelf.
func (a *Assignment) ShelfID() kernel.UUID {
	return a.shelfID
}

// OrderID returns the identifier of the order occupying the slot.
func (a *Assignment) OrderID() kernel.UUID {
	return a.orderID
}

// AssignedAt returns the time the slot was claimed.
func (a *Assignment) AssignedAt() time.Time {
	return a.assignedAt
}

// PickedUpAt returns the pickup confirmation time, or nil while uncollected.
func (a *Assignment) PickedUpAt() *time.Time {
	return a.pickedUpAt
}

// ForcedShipmentID returns the shipment the assignment was force-converted
// into, or nil if it never was.
func (a *Assignment) ForcedShipmentID() *kernel.UUID {
	return a.forcedShipmentID
}

// IsActive reports whether the slot is still occupied: neither picked up nor
// force-converted.
func (a *Assignment) IsActive() bool {
	return a.pickedUpAt == nil && a.forcedShipmentID == nil
}

// IsOlderThan reports whether an active assignment has been waiting longer
// than the given age at the asOf instant. Resolved assignments are never stale.
func (a *Assignment) IsOlderThan(asOf time.Time, age time.Duration) bool {
	return a.IsActive() && asOf.Sub(a.assignedAt) > age
}

// ConfirmPickup resolves the assignment as collected by the customer.
func (a *Assignment) ConfirmPickup(at time.Time) error {
	if !a.IsActive() {
		return ErrAssignmentAlreadyResolved
	}
	if at.IsZero() {
		return errs.NewValueIsRequiredError("pickedUpAt")
	}
	a.pickedUpAt = &at
	return nil
}

// MarkForcedShip resolves the assignment as converted into a shipment.
// The marker can be set exactly once.
func (a *Assignment) MarkForcedShip(shipmentID kernel.UUID) error {
	if !a.IsActive() {
		return ErrAssignmentAlreadyResolved
	}
	if err := shipmentID.Validate(); err != nil {
		return err
	}
	a.forcedShipmentID = &shipmentID
	return nil
}

func (a *Assignment) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

func (a *Assignment) setShelfID(shelfID kernel.UUID) error {
	if err := shelfID.Validate(); err != nil {
		return err
	}
	a.shelfID = shelfID
	return nil
}

func (a *Assignment) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	a.orderID = orderID
	return nil
}

func (a *Assignment) setAssignedAt(assignedAt time.Time) error {
	if assignedAt.IsZero() {
		return errs.NewValueIsRequiredError("assignedAt")
	}
	a.assignedAt = assignedAt
	return nil
}

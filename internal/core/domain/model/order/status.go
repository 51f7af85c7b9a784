package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status represents the fulfillment lifecycle state of a shippable order.
// It implements a forward-only state machine; the only backward-looking move
// is the Exception override, which is reachable from any shipping state.
//
// State transitions:
//
//	PendingRouting ──┬──> PickupAssigned ──┬──> PickupComplete
//	                 │          │          │
//	                 │          └──────────┼──> (forced ship)
//	                 │                     │
//	                 └──> ShipPending <────┘
//	                           │
//	                           v
//	                        Shipped ──> Delivered
//
//	Exception is reachable from ShipPending, Shipped and Delivered.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// PendingRouting is the initial status: the order reached production
	// readiness and awaits a ship-vs-pickup decision.
	PendingRouting

	// PickupAssigned indicates a shelf slot has been committed for the order.
	PickupAssigned

	// ShipPending indicates a carrier label has been purchased and the parcel
	// awaits handover to the carrier.
	ShipPending

	// PickupComplete indicates the customer collected the order from its shelf.
	// This is a final state.
	PickupComplete

	// Shipped indicates the carrier has taken possession of the parcel.
	Shipped

	// Delivered indicates the carrier confirmed delivery.
	Delivered

	// Exception indicates a carrier-reported failure (lost, returned, damaged
	// in transit). It overrides any shipping state, including Delivered.
	Exception
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "UNKNOWN",
		PendingRouting: "PENDING_ROUTING",
		PickupAssigned: "PICKUP_ASSIGNED",
		ShipPending:    "SHIP_PENDING",
		PickupComplete: "PICKUP_COMPLETE",
		Shipped:        "SHIPPED",
		Delivered:      "DELIVERED",
		Exception:      "EXCEPTION",
	}
}

// allowedTransitions enumerates every legal forward edge of the state machine.
func allowedTransitions() map[Status][]Status {
	return map[Status][]Status{
		PendingRouting: {PickupAssigned, ShipPending},
		// PickupAssigned -> ShipPending is the forced-ship conversion of a
		// stale pickup.
		PickupAssigned: {PickupComplete, ShipPending},
		ShipPending:    {Shipped, Exception},
		Shipped:        {Delivered, Exception},
		Delivered:      {Exception},
	}
}

// Validate checks that the Status holds one of the defined values.
// Unknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if s <= Unknown || s > Exception {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid fulfillment status", s))
	}
	return nil
}

// String returns the wire-level name of the status, e.g. "PENDING_ROUTING".
// Implements fmt.Stringer and is safe on any value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// StatusFromString parses the wire-level status name. Unrecognized names map
// to Unknown.
func StatusFromString(s string) Status {
	for status, name := range getStatusStrings() {
		if name == s {
			return status
		}
	}
	return Unknown
}

// CanTransitionTo reports whether moving from s to next is a legal edge.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions()[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo moves the status along a legal edge or fails.
//
// Returns:
//   - (next, nil) when the edge s -> next is allowed
//   - (0, error) otherwise
func (s Status) TransitionTo(next Status) (Status, error) {
	if err := next.Validate(); err != nil {
		return 0, err
	}
	if !s.CanTransitionTo(next) {
		return 0, errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("transition %s -> %s is not allowed", s, next))
	}
	return next, nil
}

// IsFinal reports whether no further transitions are possible from s.
func (s Status) IsFinal() bool {
	return len(allowedTransitions()[s]) == 0
}

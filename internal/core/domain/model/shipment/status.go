package shipment

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status represents the carrier-side lifecycle state of a shipment.
//
// Normal progression is strictly staged:
//
//	LabelCreated -> InTransit -> OutForDelivery -> Delivered
//
// Exception and Returned are terminal overrides: a carrier may report them at
// any point, including after Delivered (e.g. a delivery scan later corrected
// to a loss claim). Events mapping to an earlier stage than the current one
// are stale and must be dropped; overrides always apply.
//
// Unknown is the catch-all for unrecognized carrier status codes. It is a
// valid mapping result for tracking events but never a valid shipment state.
type Status int

const (
	// Unknown marks a carrier status code with no known mapping.
	Unknown Status = iota

	// LabelCreated is the initial status after a label purchase.
	LabelCreated

	// InTransit indicates the carrier has possession and the parcel is moving.
	InTransit

	// OutForDelivery indicates the parcel is on the final delivery vehicle.
	OutForDelivery

	// Delivered indicates carrier-confirmed delivery.
	Delivered

	// Exception indicates a carrier-reported failure (lost, damaged, customs hold).
	Exception

	// Returned indicates the parcel was returned to sender.
	Returned
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "UNKNOWN",
		LabelCreated:   "LABEL_CREATED",
		InTransit:      "IN_TRANSIT",
		OutForDelivery: "OUT_FOR_DELIVERY",
		Delivered:      "DELIVERED",
		Exception:      "EXCEPTION",
		Returned:       "RETURNED",
	}
}

// stageRanks orders the normal progression stages. Overrides carry no rank.
func stageRanks() map[Status]int {
	return map[Status]int{
		LabelCreated:   1,
		InTransit:      2,
		OutForDelivery: 3,
		Delivered:      4,
	}
}

// Validate checks that the Status holds one of the defined shipment states.
// Unknown is rejected: it may only appear as an event mapping result.
func (s Status) Validate() error {
	if s <= Unknown || s > Returned {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid shipment status", s))
	}
	return nil
}

// String returns the wire-level name of the status, e.g. "IN_TRANSIT".
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsOverride reports whether the status is a terminal escalation that applies
// regardless of the shipment's current stage.
func (s Status) IsOverride() bool {
	return s == Exception || s == Returned
}

// StageRank returns the position of s in the normal progression and whether
// s participates in it at all (overrides and Unknown do not).
func (s Status) StageRank() (int, bool) {
	rank, ok := stageRanks()[s]
	return rank, ok
}

// StatusFromString parses a wire-level status name. Unrecognized names map to
// Unknown without error, mirroring the tolerance required of webhook ingestion.
func StatusFromString(s string) Status {
	for status, str := range getStatusStrings() {
		if str == s {
			return status
		}
	}
	return Unknown
}

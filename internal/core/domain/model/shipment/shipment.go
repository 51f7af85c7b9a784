package shipment

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	// ErrShipmentIsNotConstructed is returned when a Shipment instance was not
	// created through the NewShipment or RestoreShipment factory functions.
	ErrShipmentIsNotConstructed = errors.New("Shipment must be created via NewShipment or RestoreShipment constructor")

	// ErrOrdersAreRequired is returned when a shipment covers no orders.
	ErrOrdersAreRequired = errs.NewValueIsRequiredError("orderIDs")

	// ErrCarrierIsRequired is returned when the carrier name is missing.
	ErrCarrierIsRequired = errs.NewValueIsRequiredError("carrier")

	// ErrServiceIsRequired is returned when the carrier service is missing.
	ErrServiceIsRequired = errs.NewValueIsRequiredError("service")

	// ErrTrackingNumberIsRequired is returned when the tracking number is missing.
	ErrTrackingNumberIsRequired = errs.NewValueIsRequiredError("trackingNumber")
)

// Shipment is the aggregate root for a purchased carrier label covering one
// order (single shipment) or several compatible orders (batch shipment).
//
// A Shipment is created by the shipment orchestrator with status LabelCreated
// and from then on is mutated only by tracking events, through ApplyTracking.
//
// Invariants:
//   - Covers at least one order; an order appears at most once
//   - Status only moves forward through the carrier stages, except the
//     Exception/Returned overrides
//   - DeliveredAt is set exactly when the Delivered stage is reached
type Shipment struct {
	id             kernel.UUID
	orderIDs       []kernel.UUID
	carrier        string
	service        string
	trackingNumber string
	trackingURL    string
	labelURL       string
	costCents      int64
	status         Status
	createdAt      time.Time
	deliveredAt    *time.Time

	guard guard.ConstructorGuard
}

// NewShipment creates a Shipment for a freshly purchased label.
// The shipment starts in LabelCreated status.
func NewShipment(
	id kernel.UUID,
	orderIDs []kernel.UUID,
	carrier string,
	service string,
	trackingNumber string,
	trackingURL string,
	labelURL string,
	costCents int64,
	createdAt time.Time,
) (*Shipment, error) {
	s := &Shipment{
		status:      LabelCreated,
		trackingURL: trackingURL,
		labelURL:    labelURL,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		s.setID(id),
		s.setOrderIDs(orderIDs),
		s.setCarrier(carrier),
		s.setService(service),
		s.setTrackingNumber(trackingNumber),
		s.setCost(costCents),
		s.setCreatedAt(createdAt),
	); err != nil {
		return nil, err
	}

	return s, nil
}

// RestoreShipment reconstructs a Shipment aggregate from persistent storage.
func RestoreShipment(
	id kernel.UUID,
	orderIDs []kernel.UUID,
	carrier string,
	service string,
	trackingNumber string,
	trackingURL string,
	labelURL string,
	costCents int64,
	status Status,
	createdAt time.Time,
	deliveredAt *time.Time,
) (*Shipment, error) {
	s := &Shipment{
		trackingURL: trackingURL,
		labelURL:    labelURL,
		deliveredAt: deliveredAt,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		s.setID(id),
		s.setOrderIDs(orderIDs),
		s.setCarrier(carrier),
		s.setService(service),
		s.setTrackingNumber(trackingNumber),
		s.setCost(costCents),
		s.setCreatedAt(createdAt),
		s.setStatus(status),
	); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate ensures the Shipment instance was properly constructed.
func (s *Shipment) Validate() error {
	if s == nil {
		return ErrShipmentIsNotConstructed
	}
	return s.guard.Validate(ErrShipmentIsNotConstructed)
}

// IsEqual compares two shipments by their unique identifiers.
func (s *Shipment) IsEqual(other *Shipment) bool {
	return other != nil && s.id.IsEqual(other.id)
}

// ID returns the shipment's unique identifier.
func (s *Shipment) ID() kernel.UUID {
	return s.id
}

// OrderIDs returns the identifiers of the orders covered by this shipment.
// The returned slice is a copy.
func (s *Shipment) OrderIDs() []kernel.UUID {
	ids := make([]kernel.UUID, len(s.orderIDs))
	copy(ids, s.orderIDs)
	return ids
}

// Covers reports whether the shipment includes the given order.
func (s *Shipment) Covers(orderID kernel.UUID) bool {
	for _, id := range s.orderIDs {
		if id.IsEqual(orderID) {
			return true
		}
	}
	return false
}

// IsBatch reports whether the shipment covers more than one order.
func (s *Shipment) IsBatch() bool {
	return len(s.orderIDs) > 1
}

// Carrier returns the carrier name.
func (s *Shipment) Carrier() string {
	return s.carrier
}

// Service returns the carrier service level the label was purchased for.
func (s *Shipment) Service() string {
	return s.service
}

// TrackingNumber returns the carrier tracking number.
func (s *Shipment) TrackingNumber() string {
	return s.trackingNumber
}

// TrackingURL returns the public tracking page URL, if the carrier provides one.
func (s *Shipment) TrackingURL() string {
	return s.trackingURL
}

// LabelURL returns the URL of the purchased label document.
func (s *Shipment) LabelURL() string {
	return s.labelURL
}

// CostCents returns the purchased label cost in cents.
func (s *Shipment) CostCents() int64 {
	return s.costCents
}

// Status returns the current carrier-side status.
func (s *Shipment) Status() Status {
	return s.status
}

// CreatedAt returns the label purchase timestamp.
func (s *Shipment) CreatedAt() time.Time {
	return s.createdAt
}

// DeliveredAt returns the delivery timestamp, or nil while undelivered.
func (s *Shipment) DeliveredAt() *time.Time {
	return s.deliveredAt
}

// IsActive reports whether the shipment still binds its orders: a shipment in
// Exception or Returned no longer blocks a replacement shipment.
func (s *Shipment) IsActive() bool {
	return !s.status.IsOverride()
}

// ApplyTracking advances the shipment according to a mapped tracking stage.
//
// Ordering rule: a stage at or below the current stage is stale and is
// dropped (no state change, no error) because carriers redeliver and reorder
// webhooks freely. Exception and Returned override any current state.
//
// Returns:
//   - (true, nil) when the shipment state changed
//   - (false, nil) when the event was stale or a repeat
//   - (false, error) when next is not an applicable stage (e.g. Unknown)
func (s *Shipment) ApplyTracking(next Status, occurredAt time.Time) (bool, error) {
	if next.IsOverride() {
		if s.status == next {
			return false, nil
		}
		s.status = next
		return true, nil
	}

	nextRank, ok := next.StageRank()
	if !ok {
		return false, errs.NewValueIsInvalidErrorWithCause("status",
			errors.New(next.String()+" is not an applicable tracking stage"))
	}

	// Once overridden, only another override may change the state.
	if s.status.IsOverride() {
		return false, nil
	}

	currentRank, _ := s.status.StageRank()
	if nextRank <= currentRank {
		return false, nil
	}

	s.status = next
	if next == Delivered {
		t := occurredAt
		s.deliveredAt = &t
	}
	return true, nil
}

func (s *Shipment) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

func (s *Shipment) setOrderIDs(orderIDs []kernel.UUID) error {
	if len(orderIDs) == 0 {
		return ErrOrdersAreRequired
	}

	seen := make(map[kernel.UUID]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return err
		}
		if _, dup := seen[id]; dup {
			return errs.NewValueIsInvalidErrorWithCause("orderIDs",
				errors.New("order "+id.String()+" appears more than once"))
		}
		seen[id] = struct{}{}
	}

	s.orderIDs = make([]kernel.UUID, len(orderIDs))
	copy(s.orderIDs, orderIDs)
	return nil
}

func (s *Shipment) setCarrier(carrier string) error {
	if carrier == "" {
		return ErrCarrierIsRequired
	}
	s.carrier = carrier
	return nil
}

func (s *Shipment) setService(service string) error {
	if service == "" {
		return ErrServiceIsRequired
	}
	s.service = service
	return nil
}

func (s *Shipment) setTrackingNumber(trackingNumber string) error {
	if trackingNumber == "" {
		return ErrTrackingNumberIsRequired
	}
	s.trackingNumber = trackingNumber
	return nil
}

func (s *Shipment) setCost(costCents int64) error {
	if costCents < 0 {
		return errs.NewValueIsInvalidErrorWithCause("costCents",
			errors.New("cost cannot be negative"))
	}
	s.costCents = costCents
	return nil
}

func (s *Shipment) setCreatedAt(createdAt time.Time) error {
	if createdAt.IsZero() {
		return errs.NewValueIsRequiredError("createdAt")
	}
	s.createdAt = createdAt
	return nil
}

func (s *Shipment) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	s.status = status
	return nil
}

package commands

import (
	"errors"
	"time"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrProcessTrackingEventCommandIsNotConstructed = errors.New(
		"ProcessTrackingEventCommand must be created via NewProcessTrackingEventCommand constructor",
	)
	ErrTrackingNumberIsRequired = errors.New("tracking number is required")
	ErrCarrierStatusIsRequired  = errors.New("carrier status is required")
)

// ProcessTrackingEventCommand carries one carrier webhook event: the carrier,
// the tracking number it refers to, the carrier-native status code, the
// carrier-supplied occurrence time and the raw payload for audit.
type ProcessTrackingEventCommand struct { //nolint:recvcheck //using for validation
	carrier        string
	trackingNumber string
	carrierStatus  string
	occurredAt     time.Time
	rawPayload     []byte

	guard guard.ConstructorGuard
}

// NewProcessTrackingEventCommand creates a tracking event processing command.
func NewProcessTrackingEventCommand(
	carrier, trackingNumber, carrierStatus string,
	occurredAt time.Time,
	rawPayload []byte,
) (ProcessTrackingEventCommand, error) {
	cmd := ProcessTrackingEventCommand{
		rawPayload: rawPayload,
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCarrier(carrier),
		cmd.setTrackingNumber(trackingNumber),
		cmd.setCarrierStatus(carrierStatus),
		cmd.setOccurredAt(occurredAt),
	); err != nil {
		return ProcessTrackingEventCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ProcessTrackingEventCommand) Validate() error {
	return c.guard.Validate(ErrProcessTrackingEventCommandIsNotConstructed)
}

// Carrier returns the carrier that sent the event.
func (c ProcessTrackingEventCommand) Carrier() string {
	return c.carrier
}

// TrackingNumber returns the tracking number the event refers to.
func (c ProcessTrackingEventCommand) TrackingNumber() string {
	return c.trackingNumber
}

// CarrierStatus returns the carrier-native status code.
func (c ProcessTrackingEventCommand) CarrierStatus() string {
	return c.carrierStatus
}

// OccurredAt returns the carrier-supplied occurrence time.
func (c ProcessTrackingEventCommand) OccurredAt() time.Time {
	return c.occurredAt
}

// RawPayload returns the raw webhook body retained for audit.
func (c ProcessTrackingEventCommand) RawPayload() []byte {
	return c.rawPayload
}

func (c *ProcessTrackingEventCommand) setCarrier(carrier string) error {
	if carrier == "" {
		return ErrCarrierIsRequired
	}

	c.carrier = carrier
	return nil
}

func (c *ProcessTrackingEventCommand) setTrackingNumber(trackingNumber string) error {
	if trackingNumber == "" {
		return ErrTrackingNumberIsRequired
	}

	c.trackingNumber = trackingNumber
	return nil
}

func (c *ProcessTrackingEventCommand) setCarrierStatus(carrierStatus string) error {
	if carrierStatus == "" {
		return ErrCarrierStatusIsRequired
	}

	c.carrierStatus = carrierStatus
	return nil
}

func (c *ProcessTrackingEventCommand) setOccurredAt(occurredAt time.Time) error {
	if occurredAt.IsZero() {
		return errs.NewValueIsRequiredError("occurredAt")
	}

	c.occurredAt = occurredAt
	return nil
}

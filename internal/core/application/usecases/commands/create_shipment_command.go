package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrCreateShipmentCommandIsNotConstructed = errors.New(
		"CreateShipmentCommand must be created via NewCreateShipmentCommand constructor",
	)
	ErrCarrierIsRequired = errors.New("carrier is required")
	ErrServiceIsRequired = errors.New("service is required")
)

// CreateShipmentCommand represents a request to purchase a carrier label for
// one order and commit its routing decision to shipping.
//
// The forced variant is issued by the stale pickup sweep for orders that were
// assigned to a shelf but never collected.
type CreateShipmentCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	carrier string
	service string
	forced  bool

	guard guard.ConstructorGuard
}

// NewCreateShipmentCommand creates a command to ship a pending order.
func NewCreateShipmentCommand(orderID kernel.UUID, carrier, service string) (CreateShipmentCommand, error) {
	return newCreateShipmentCommand(orderID, carrier, service, false)
}

// NewForcedShipmentCommand creates a command to convert an uncollected pickup
// assignment into a shipment.
func NewForcedShipmentCommand(orderID kernel.UUID, carrier, service string) (CreateShipmentCommand, error) {
	return newCreateShipmentCommand(orderID, carrier, service, true)
}

func newCreateShipmentCommand(orderID kernel.UUID, carrier, service string, forced bool) (CreateShipmentCommand, error) {
	cmd := CreateShipmentCommand{
		forced: forced,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCarrier(carrier),
		cmd.setService(service),
	); err != nil {
		return CreateShipmentCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateShipmentCommand) Validate() error {
	return c.guard.Validate(ErrCreateShipmentCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to ship.
func (c CreateShipmentCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Carrier returns the carrier to purchase the label from.
func (c CreateShipmentCommand) Carrier() string {
	return c.carrier
}

// Service returns the carrier service level for the label.
func (c CreateShipmentCommand) Service() string {
	return c.service
}

// Forced reports whether this shipment converts an uncollected pickup.
func (c CreateShipmentCommand) Forced() bool {
	return c.forced
}

func (c *CreateShipmentCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateShipmentCommand) setCarrier(carrier string) error {
	if carrier == "" {
		return ErrCarrierIsRequired
	}

	c.carrier = carrier
	return nil
}

func (c *CreateShipmentCommand) setService(service string) error {
	if service == "" {
		return ErrServiceIsRequired
	}

	c.service = service
	return nil
}

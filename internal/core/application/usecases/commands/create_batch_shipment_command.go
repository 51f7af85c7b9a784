package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrCreateBatchShipmentCommandIsNotConstructed = errors.New(
	"CreateBatchShipmentCommand must be created via NewCreateBatchShipmentCommand constructor",
)

// CreateBatchShipmentCommand represents a request to ship a set of orders,
// grouped into as few carrier labels as destination and weight allow.
type CreateBatchShipmentCommand struct { //nolint:recvcheck //using for validation
	orderIDs []kernel.UUID
	carrier  string
	service  string

	guard guard.ConstructorGuard
}

// NewCreateBatchShipmentCommand creates a batch shipment command. The order
// set must be non-empty and free of duplicates.
func NewCreateBatchShipmentCommand(orderIDs []kernel.UUID, carrier, service string) (CreateBatchShipmentCommand, error) {
	cmd := CreateBatchShipmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderIDs(orderIDs),
		cmd.setCarrier(carrier),
		cmd.setService(service),
	); err != nil {
		return CreateBatchShipmentCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateBatchShipmentCommand) Validate() error {
	return c.guard.Validate(ErrCreateBatchShipmentCommandIsNotConstructed)
}

// OrderIDs returns the identifiers of the orders to ship.
func (c CreateBatchShipmentCommand) OrderIDs() []kernel.UUID {
	return c.orderIDs
}

// Carrier returns the carrier to purchase the labels from.
func (c CreateBatchShipmentCommand) Carrier() string {
	return c.carrier
}

// Service returns the carrier service level for the labels.
func (c CreateBatchShipmentCommand) Service() string {
	return c.service
}

func (c *CreateBatchShipmentCommand) setOrderIDs(orderIDs []kernel.UUID) error {
	if len(orderIDs) == 0 {
		return errs.NewValueIsRequiredError("orderIDs")
	}

	seen := make(map[kernel.UUID]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return err
		}
		if _, dup := seen[id]; dup {
			return errs.NewValueIsInvalidErrorWithCause("orderIDs",
				errors.New("duplicate order identifier: "+id.String()))
		}
		seen[id] = struct{}{}
	}

	c.orderIDs = orderIDs
	return nil
}

func (c *CreateBatchShipmentCommand) setCarrier(carrier string) error {
	if carrier == "" {
		return ErrCarrierIsRequired
	}

	c.carrier = carrier
	return nil
}

func (c *CreateBatchShipmentCommand) setService(service string) error {
	if service == "" {
		return ErrServiceIsRequired
	}

	c.service = service
	return nil
}

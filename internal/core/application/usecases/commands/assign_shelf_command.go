package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrAssignShelfCommandIsNotConstructed = errors.New(
	"AssignShelfCommand must be created via NewAssignShelfCommand constructor",
)

// AssignShelfCommand represents a request to place an order on a pickup
// shelf. When no shelf is named, the handler load-balances across shelves by
// free capacity.
type AssignShelfCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	shelfID *kernel.UUID

	guard guard.ConstructorGuard
}

// NewAssignShelfCommand creates a command assigning the order to any shelf
// with a free slot.
func NewAssignShelfCommand(orderID kernel.UUID) (AssignShelfCommand, error) {
	return newAssignShelfCommand(orderID, nil)
}

// NewAssignShelfToCommand creates a command assigning the order to one
// specific shelf.
func NewAssignShelfToCommand(orderID, shelfID kernel.UUID) (AssignShelfCommand, error) {
	return newAssignShelfCommand(orderID, &shelfID)
}

func newAssignShelfCommand(orderID kernel.UUID, shelfID *kernel.UUID) (AssignShelfCommand, error) {
	cmd := AssignShelfCommand{
		shelfID: shelfID,
		guard:   guard.NewConstructorGuard(),
	}

	if err := cmd.setOrderID(orderID); err != nil {
		return AssignShelfCommand{}, err
	}

	if shelfID != nil {
		if err := shelfID.Validate(); err != nil {
			return AssignShelfCommand{}, err
		}
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AssignShelfCommand) Validate() error {
	return c.guard.Validate(ErrAssignShelfCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to place on a shelf.
func (c AssignShelfCommand) OrderID() kernel.UUID {
	return c.orderID
}

// ShelfID returns the requested shelf, or nil for automatic selection.
func (c AssignShelfCommand) ShelfID() *kernel.UUID {
	return c.shelfID
}

func (c *AssignShelfCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

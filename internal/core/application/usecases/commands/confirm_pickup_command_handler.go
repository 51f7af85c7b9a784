package commands

import (
	"context"
	"time"

	"fulfillment/internal/pkg/errs"
)

// ConfirmPickupCommandHandler resolves a shelf assignment as collected and
// frees its slot.
type ConfirmPickupCommandHandler struct {
	uowFactory ShelfUoWFactory
}

// NewConfirmPickupCommandHandler creates a handler for pickup confirmation.
func NewConfirmPickupCommandHandler(uowFactory ShelfUoWFactory) (ConfirmPickupCommandHandler, error) {
	if uowFactory == nil {
		return ConfirmPickupCommandHandler{}, errs.NewValueIsRequiredError("uowFactory")
	}

	return ConfirmPickupCommandHandler{
		uowFactory: uowFactory,
	}, nil
}

// Handle marks the assignment picked up, releases the slot and completes the
// order, all in one transaction.
func (h *ConfirmPickupCommandHandler) Handle(ctx context.Context, cmd ConfirmPickupCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	assignment, err := uow.ShelfRepository().GetAssignment(ctx, cmd.AssignmentID())
	if err != nil {
		return err
	}

	if err = assignment.ConfirmPickup(time.Now()); err != nil {
		return err
	}

	aggregate, err := uow.OrderRepository().Get(ctx, assignment.OrderID())
	if err != nil {
		return err
	}

	if err = aggregate.CompletePickup(); err != nil {
		return err
	}

	if err = uow.ShelfRepository().UpdateAssignment(ctx, assignment); err != nil {
		return err
	}

	if err = uow.ShelfRepository().ReleaseSlot(ctx, assignment.ShelfID()); err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

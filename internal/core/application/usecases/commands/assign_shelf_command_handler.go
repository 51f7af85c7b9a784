package commands

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shelf"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// AssignShelfCommandHandler places an order on a pickup shelf slot.
//
// The capacity check and the occupancy increment happen as one atomic
// repository operation, so two callers racing for the last free slot resolve
// to one winner and one shelf.ErrShelfFull. With automatic selection the
// handler walks candidate shelves by descending free capacity, moving to the
// next candidate whenever a concurrent claim wins the race.
type AssignShelfCommandHandler struct {
	uowFactory ShelfUoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewAssignShelfCommandHandler creates a handler for shelf assignment.
func NewAssignShelfCommandHandler(
	uowFactory ShelfUoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) (AssignShelfCommandHandler, error) {
	if uowFactory == nil {
		return AssignShelfCommandHandler{}, errs.NewValueIsRequiredError("uowFactory")
	}
	if publisher == nil {
		return AssignShelfCommandHandler{}, errs.NewValueIsRequiredError("publisher")
	}
	if logger == nil {
		return AssignShelfCommandHandler{}, errs.NewValueIsRequiredError("logger")
	}

	return AssignShelfCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger.With("component", "assign_shelf"),
	}, nil
}

// Handle claims a slot and records the assignment.
func (h *AssignShelfCommandHandler) Handle(ctx context.Context, cmd AssignShelfCommand) (*shelf.Assignment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	shelfID, err := h.claimSlot(ctx, uow.ShelfRepository(), cmd.ShelfID())
	if err != nil {
		return nil, err
	}

	assignment, err := shelf.NewAssignment(kernel.NewUUID(), shelfID, aggregate.ID(), time.Now())
	if err != nil {
		return nil, err
	}

	if err = aggregate.AssignPickup(); err != nil {
		return nil, err
	}

	if err = uow.ShelfRepository().AddAssignment(ctx, assignment); err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	if err = h.publisher.PublishPickupAssigned(ctx, ports.PickupAssignedEvent{
		AssignmentID: assignment.ID(),
		ShelfID:      shelfID,
		OrderID:      aggregate.ID(),
		OccurredAt:   assignment.AssignedAt(),
	}); err != nil {
		h.logger.Warn("pickup assigned event not published",
			"assignment_id", assignment.ID().String(), "error", err)
	}

	return assignment, nil
}

// claimSlot atomically claims one slot on the requested shelf, or on the
// freest shelf when none is requested.
func (h *AssignShelfCommandHandler) claimSlot(
	ctx context.Context,
	repo ports.ShelfRepository,
	requested *kernel.UUID,
) (kernel.UUID, error) {
	if requested != nil {
		if err := repo.ClaimSlot(ctx, *requested); err != nil {
			return kernel.UUID{}, err
		}
		return *requested, nil
	}

	shelves, err := repo.GetAll(ctx)
	if err != nil {
		return kernel.UUID{}, err
	}

	candidates := make([]*shelf.Shelf, 0, len(shelves))
	for _, s := range shelves {
		if s.HasCapacity() {
			candidates = append(candidates, s)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FreeSlots() > candidates[j].FreeSlots()
	})

	for _, candidate := range candidates {
		err = repo.ClaimSlot(ctx, candidate.ID())
		if err == nil {
			return candidate.ID(), nil
		}
		if errors.Is(err, shelf.ErrShelfFull) {
			// Lost the race for this shelf, try the next one.
			continue
		}
		return kernel.UUID{}, err
	}

	return kernel.UUID{}, shelf.ErrShelfFull
}

package commands

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/shelf"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// ShipmentCreator purchases a label and commits an order to shipping.
// Satisfied by CreateShipmentCommandHandler.
type ShipmentCreator interface {
	Handle(ctx context.Context, cmd CreateShipmentCommand) (*shipment.Shipment, error)
}

// SweepResult counts the outcomes of one sweep.
type SweepResult struct {
	Escalated int
	Forced    int
	Failed    int
}

// SweepStalePickupsCommandHandler reconciles shelf assignments that were
// never collected.
//
// Assignments older than staleAge produce an escalation event without state
// changes. Assignments older than forcedShipAge are converted into a
// shipment on the default carrier service and their slot is released. The
// conversion happens at most once per assignment: the order's fulfillment
// state gates the label purchase and the assignment keeps a persisted
// forced-shipment marker.
type SweepStalePickupsCommandHandler struct {
	uowFactory     FulfillmentUoWFactory
	shipments      ShipmentCreator
	publisher      ports.EventPublisher
	staleAge       time.Duration
	forcedShipAge  time.Duration
	defaultCarrier string
	defaultService string
	logger         *slog.Logger
}

// NewSweepStalePickupsCommandHandler creates a handler for the periodic
// stale pickup sweep.
func NewSweepStalePickupsCommandHandler(
	uowFactory FulfillmentUoWFactory,
	shipments ShipmentCreator,
	publisher ports.EventPublisher,
	staleAge, forcedShipAge time.Duration,
	defaultCarrier, defaultService string,
	logger *slog.Logger,
) (SweepStalePickupsCommandHandler, error) {
	if uowFactory == nil {
		return SweepStalePickupsCommandHandler{}, errs.NewValueIsRequiredError("uowFactory")
	}
	if shipments == nil {
		return SweepStalePickupsCommandHandler{}, errs.NewValueIsRequiredError("shipments")
	}
	if publisher == nil {
		return SweepStalePickupsCommandHandler{}, errs.NewValueIsRequiredError("publisher")
	}
	if staleAge <= 0 {
		return SweepStalePickupsCommandHandler{}, errs.NewValueIsRequiredError("staleAge")
	}
	if forcedShipAge <= staleAge {
		return SweepStalePickupsCommandHandler{}, errs.NewValueIsInvalidError("forcedShipAge")
	}
	if defaultCarrier == "" {
		return SweepStalePickupsCommandHandler{}, ErrCarrierIsRequired
	}
	if defaultService == "" {
		return SweepStalePickupsCommandHandler{}, ErrServiceIsRequired
	}
	if logger == nil {
		return SweepStalePickupsCommandHandler{}, errs.NewValueIsRequiredError("logger")
	}

	return SweepStalePickupsCommandHandler{
		uowFactory:     uowFactory,
		shipments:      shipments,
		publisher:      publisher,
		staleAge:       staleAge,
		forcedShipAge:  forcedShipAge,
		defaultCarrier: defaultCarrier,
		defaultService: defaultService,
		logger:         logger.With("component", "sweep_stale_pickups"),
	}, nil
}

// Handle runs one sweep. Per-assignment failures are logged and counted,
// never aborting the rest of the sweep.
func (h *SweepStalePickupsCommandHandler) Handle(ctx context.Context, cmd SweepStalePickupsCommand) (SweepResult, error) {
	if err := cmd.Validate(); err != nil {
		return SweepResult{}, err
	}

	stale, err := h.loadStale(ctx, cmd.AsOf())
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{}
	for _, assignment := range stale {
		if assignment.IsOlderThan(cmd.AsOf(), h.forcedShipAge) {
			if err = h.forceShip(ctx, assignment); err != nil {
				h.logger.Error("forced shipment failed",
					"assignment_id", assignment.ID().String(),
					"order_id", assignment.OrderID().String(),
					"error", err)
				result.Failed++
				continue
			}
			result.Forced++
			continue
		}

		if err = h.publisher.PublishStalePickupEscalated(ctx, ports.StalePickupEscalatedEvent{
			AssignmentID: assignment.ID(),
			ShelfID:      assignment.ShelfID(),
			OrderID:      assignment.OrderID(),
			AssignedAt:   assignment.AssignedAt(),
			OccurredAt:   cmd.AsOf(),
		}); err != nil {
			h.logger.Error("stale pickup escalation not published",
				"assignment_id", assignment.ID().String(), "error", err)
			result.Failed++
			continue
		}
		result.Escalated++
	}

	return result, nil
}

func (h *SweepStalePickupsCommandHandler) loadStale(ctx context.Context, asOf time.Time) ([]*shelf.Assignment, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.ShelfRepository().GetAssignmentsOlderThan(ctx, asOf.Add(-h.staleAge))
}

// forceShip converts one uncollected assignment into a shipment and frees
// its slot. The label purchase commits in its own transaction first; the
// assignment resolution and slot release commit in a second one.
func (h *SweepStalePickupsCommandHandler) forceShip(ctx context.Context, assignment *shelf.Assignment) error {
	cmd, err := NewForcedShipmentCommand(assignment.OrderID(), h.defaultCarrier, h.defaultService)
	if err != nil {
		return err
	}

	created, err := h.shipments.Handle(ctx, cmd)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	current, err := uow.ShelfRepository().GetAssignment(ctx, assignment.ID())
	if err != nil {
		return err
	}

	if err = current.MarkForcedShip(created.ID()); err != nil {
		return err
	}

	if err = uow.ShelfRepository().UpdateAssignment(ctx, current); err != nil {
		return err
	}

	if err = uow.ShelfRepository().ReleaseSlot(ctx, current.ShelfID()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

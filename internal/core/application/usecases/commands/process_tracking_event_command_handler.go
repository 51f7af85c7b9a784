package commands

import (
	"context"
	"errors"
	"log/slog"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// TrackingResult reports the outcome of one webhook event: whether it moved
// the shipment and the shipment's status afterwards.
type TrackingResult struct {
	Processed bool
	Status    shipment.Status
}

// ProcessTrackingEventCommandHandler applies one carrier tracking event to
// its shipment and the orders it covers.
//
// The handler never fails on content the carrier got wrong: unknown status
// codes and unknown tracking numbers are logged and acknowledged so the
// carrier does not retry-storm the webhook. Each event's persistence and the
// resulting state transition commit as one transaction; events for different
// shipments can be processed concurrently without shared locks.
type ProcessTrackingEventCommandHandler struct {
	uowFactory ShipmentUoWFactory
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

// NewProcessTrackingEventCommandHandler creates a handler for tracking
// webhook events.
func NewProcessTrackingEventCommandHandler(
	uowFactory ShipmentUoWFactory,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) (ProcessTrackingEventCommandHandler, error) {
	if uowFactory == nil {
		return ProcessTrackingEventCommandHandler{}, errs.NewValueIsRequiredError("uowFactory")
	}
	if publisher == nil {
		return ProcessTrackingEventCommandHandler{}, errs.NewValueIsRequiredError("publisher")
	}
	if logger == nil {
		return ProcessTrackingEventCommandHandler{}, errs.NewValueIsRequiredError("logger")
	}

	return ProcessTrackingEventCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger.With("component", "process_tracking_event"),
	}, nil
}

// Handle persists the event and advances the shipment when the event is
// newer than its current stage. Exception and returned events override any
// stage; stale events are dropped without error.
func (h *ProcessTrackingEventCommandHandler) Handle(ctx context.Context, cmd ProcessTrackingEventCommand) (TrackingResult, error) {
	if err := cmd.Validate(); err != nil {
		return TrackingResult{}, err
	}

	mapped := shipment.MapCarrierStatus(cmd.Carrier(), cmd.CarrierStatus())

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return TrackingResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	tracked, err := uow.ShipmentRepository().GetByTrackingNumber(ctx, cmd.Carrier(), cmd.TrackingNumber())
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			h.logger.Warn("tracking event for unknown shipment acknowledged",
				"carrier", cmd.Carrier(), "tracking_number", cmd.TrackingNumber())
			return TrackingResult{Processed: false, Status: shipment.Unknown}, nil
		}
		return TrackingResult{}, err
	}

	event, err := shipment.NewTrackingEvent(
		kernel.NewUUID(), tracked.ID(), cmd.CarrierStatus(), mapped, cmd.OccurredAt(), cmd.RawPayload())
	if err != nil {
		return TrackingResult{}, err
	}

	if err = uow.ShipmentRepository().AddTrackingEvent(ctx, event); err != nil {
		return TrackingResult{}, err
	}

	previous := tracked.Status()
	changed := false

	if mapped == shipment.Unknown {
		h.logger.Warn("unrecognized carrier status stored for inspection",
			"carrier", cmd.Carrier(), "carrier_status", cmd.CarrierStatus(),
			"shipment_id", tracked.ID().String())
	} else {
		changed, err = tracked.ApplyTracking(mapped, cmd.OccurredAt())
		if err != nil {
			return TrackingResult{}, err
		}
	}

	if changed {
		if err = uow.ShipmentRepository().Update(ctx, tracked); err != nil {
			return TrackingResult{}, err
		}

		if err = h.advanceOrders(ctx, uow, tracked); err != nil {
			return TrackingResult{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return TrackingResult{}, err
	}

	if changed {
		if err = h.publisher.PublishShipmentStatusChanged(ctx, ports.ShipmentStatusChangedEvent{
			ShipmentID: tracked.ID(),
			Previous:   previous,
			Current:    tracked.Status(),
			OccurredAt: cmd.OccurredAt(),
		}); err != nil {
			h.logger.Warn("shipment status changed event not published",
				"shipment_id", tracked.ID().String(), "error", err)
		}
	}

	return TrackingResult{Processed: changed, Status: tracked.Status()}, nil
}

// advanceOrders mirrors the shipment's new status onto the fulfillment state
// of every order it covers.
func (h *ProcessTrackingEventCommandHandler) advanceOrders(
	ctx context.Context,
	uow ShipmentUoW,
	tracked *shipment.Shipment,
) error {
	orders, err := uow.OrderRepository().GetMany(ctx, tracked.OrderIDs())
	if err != nil {
		return err
	}

	for _, aggregate := range orders {
		if err = advanceOrder(aggregate, tracked.Status()); err != nil {
			return err
		}
		if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
			return err
		}
	}

	return nil
}

func advanceOrder(aggregate *order.Order, status shipment.Status) error {
	switch status {
	case shipment.InTransit, shipment.OutForDelivery:
		if aggregate.Status() == order.ShipPending {
			return aggregate.MarkShipped()
		}
	case shipment.Delivered:
		// Catch up if intermediate events were missed.
		if aggregate.Status() == order.ShipPending {
			if err := aggregate.MarkShipped(); err != nil {
				return err
			}
		}
		if aggregate.Status() == order.Shipped {
			return aggregate.MarkDelivered()
		}
	case shipment.Exception, shipment.Returned:
		if aggregate.Status().CanTransitionTo(order.Exception) {
			return aggregate.MarkException()
		}
	}

	return nil
}

package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// ErrOrderNotShippable is returned when the order's fulfillment state does
// not admit a new shipment: it was already routed, or a forced shipment was
// requested for an order that is not on a shelf.
var ErrOrderNotShippable = errors.New("order is not in a shippable state")

// CreateShipmentCommandHandler purchases a carrier label for one order and
// persists the resulting shipment.
//
// The carrier call happens before any write; on carrier failure the typed
// gateway error is returned and no partial shipment record remains. The
// created event is published only after the transaction commits.
type CreateShipmentCommandHandler struct {
	uowFactory ShipmentUoWFactory
	gateway    ports.CarrierGateway
	publisher  ports.EventPublisher
	origin     kernel.Address
	logger     *slog.Logger
}

// NewCreateShipmentCommandHandler creates a handler for shipment creation.
func NewCreateShipmentCommandHandler(
	uowFactory ShipmentUoWFactory,
	gateway ports.CarrierGateway,
	publisher ports.EventPublisher,
	origin kernel.Address,
	logger *slog.Logger,
) (CreateShipmentCommandHandler, error) {
	if uowFactory == nil {
		return CreateShipmentCommandHandler{}, errs.NewValueIsRequiredError("uowFactory")
	}
	if gateway == nil {
		return CreateShipmentCommandHandler{}, errs.NewValueIsRequiredError("gateway")
	}
	if publisher == nil {
		return CreateShipmentCommandHandler{}, errs.NewValueIsRequiredError("publisher")
	}
	if !origin.IsVerified() {
		return CreateShipmentCommandHandler{}, errs.NewValueIsRequiredError("origin")
	}
	if logger == nil {
		return CreateShipmentCommandHandler{}, errs.NewValueIsRequiredError("logger")
	}

	return CreateShipmentCommandHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
		publisher:  publisher,
		origin:     origin,
		logger:     logger.With("component", "create_shipment"),
	}, nil
}

// Handle purchases the label and commits the order's routing to shipping.
func (h *CreateShipmentCommandHandler) Handle(ctx context.Context, cmd CreateShipmentCommand) (*shipment.Shipment, error) {
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

	if cmd.Forced() {
		if aggregate.Status() != order.PickupAssigned {
			return nil, ErrOrderNotShippable
		}
	} else if !aggregate.IsPendingRouting() {
		return nil, ErrOrderNotShippable
	}

	destination := aggregate.Destination()
	if !destination.IsVerified() {
		return nil, ports.ErrAddressInvalid
	}

	label, err := h.gateway.PurchaseLabel(ctx, ports.PurchaseRequest{
		Origin:      h.origin,
		Destination: destination,
		Parcel:      aggregate.Parcel(),
		Rate:        ports.CarrierRate{Carrier: cmd.Carrier(), Service: cmd.Service()},
		Reference:   aggregate.ID().String(),
	})
	if err != nil {
		return nil, err
	}

	created, err := shipment.NewShipment(
		kernel.NewUUID(),
		[]kernel.UUID{aggregate.ID()},
		label.Carrier,
		label.Service,
		label.TrackingNumber,
		label.TrackingURL,
		label.LabelURL,
		label.CostCents,
		time.Now(),
	)
	if err != nil {
		return nil, err
	}

	if err = aggregate.MarkShipPending(); err != nil {
		return nil, err
	}

	if err = uow.ShipmentRepository().Add(ctx, created); err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	if err = h.publisher.PublishShipmentCreated(ctx, ports.ShipmentCreatedEvent{
		ShipmentID:     created.ID(),
		OrderIDs:       created.OrderIDs(),
		Carrier:        created.Carrier(),
		Service:        created.Service(),
		TrackingNumber: created.TrackingNumber(),
		CostCents:      created.CostCents(),
		Forced:         cmd.Forced(),
		OccurredAt:     created.CreatedAt(),
	}); err != nil {
		h.logger.Warn("shipment created event not published",
			"shipment_id", created.ID().String(), "error", err)
	}

	return created, nil
}

package commands

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"golang.org/x/sync/errgroup"
)

// BatchError names one order that could not be shipped and why.
type BatchError struct {
	OrderID kernel.UUID
	Reason  string
}

// BatchResult is the per-order outcome of a batch shipment run. Orders that
// already left the pending-routing state are listed in Skipped, which makes
// re-running an identical batch safe: labels are never purchased twice.
type BatchResult struct {
	Shipments []*shipment.Shipment
	Skipped   []kernel.UUID
	Errors    []BatchError
}

// CreateBatchShipmentCommandHandler ships a set of orders with one carrier
// label per compatible group.
//
// Groups are processed concurrently and failures are isolated: a failing
// group contributes error entries for its orders without aborting the rest.
// When the carrier signals rate limiting, remaining group calls to it are
// serialized.
type CreateBatchShipmentCommandHandler struct {
	uowFactory     ShipmentUoWFactory
	gateway        ports.CarrierGateway
	planner        services.BatchPlanner
	publisher      ports.EventPublisher
	origin         kernel.Address
	maxConcurrency int
	retryAttempts  int
	logger         *slog.Logger
}

// NewCreateBatchShipmentCommandHandler creates a handler for batch shipment
// creation. retryAttempts is the number of extra purchase attempts per group
// after a retryable carrier failure; zero disables retries.
func NewCreateBatchShipmentCommandHandler(
	uowFactory ShipmentUoWFactory,
	gateway ports.CarrierGateway,
	planner services.BatchPlanner,
	publisher ports.EventPublisher,
	origin kernel.Address,
	maxConcurrency int,
	retryAttempts int,
	logger *slog.Logger,
) (CreateBatchShipmentCommandHandler, error) {
	if uowFactory == nil {
		return CreateBatchShipmentCommandHandler{}, errs.NewValueIsRequiredError("uowFactory")
	}
	if gateway == nil {
		return CreateBatchShipmentCommandHandler{}, errs.NewValueIsRequiredError("gateway")
	}
	if publisher == nil {
		return CreateBatchShipmentCommandHandler{}, errs.NewValueIsRequiredError("publisher")
	}
	if !origin.IsVerified() {
		return CreateBatchShipmentCommandHandler{}, errs.NewValueIsRequiredError("origin")
	}
	if maxConcurrency <= 0 {
		return CreateBatchShipmentCommandHandler{}, errs.NewValueIsOutOfRangeError("maxConcurrency", maxConcurrency, 1, 64)
	}
	if retryAttempts < 0 {
		return CreateBatchShipmentCommandHandler{}, errs.NewValueIsOutOfRangeError("retryAttempts", retryAttempts, 0, 10)
	}
	if logger == nil {
		return CreateBatchShipmentCommandHandler{}, errs.NewValueIsRequiredError("logger")
	}

	return CreateBatchShipmentCommandHandler{
		uowFactory:     uowFactory,
		gateway:        gateway,
		planner:        planner,
		publisher:      publisher,
		origin:         origin,
		maxConcurrency: maxConcurrency,
		retryAttempts:  retryAttempts,
		logger:         logger.With("component", "create_batch_shipment"),
	}, nil
}

// Handle ships every shippable order in the command, grouped by destination
// and weight compatibility.
func (h *CreateBatchShipmentCommandHandler) Handle(ctx context.Context, cmd CreateBatchShipmentCommand) (BatchResult, error) {
	if err := cmd.Validate(); err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{}

	shippable, err := h.loadShippable(ctx, cmd.OrderIDs(), &result)
	if err != nil {
		return BatchResult{}, err
	}

	if len(shippable) == 0 {
		return result, nil
	}

	groups, err := h.planner.Plan(shippable)
	if err != nil {
		return BatchResult{}, err
	}

	var (
		mu          sync.Mutex
		rateLimited atomic.Bool
		serialize   sync.Mutex
	)

	var g errgroup.Group
	g.SetLimit(h.maxConcurrency)

	for _, group := range groups {
		g.Go(func() error {
			created, groupErr := h.shipGroup(ctx, cmd, group, &rateLimited, &serialize)

			mu.Lock()
			defer mu.Unlock()

			if groupErr != nil {
				for _, id := range group.OrderIDs() {
					result.Errors = append(result.Errors, BatchError{OrderID: id, Reason: reasonFor(groupErr)})
				}
				return nil
			}

			result.Shipments = append(result.Shipments, created)
			return nil
		})
	}

	// Group failures land in result.Errors, Wait never sees them.
	_ = g.Wait()

	return result, nil
}

// loadShippable resolves order identifiers into shippable aggregates and
// fills the skip and error lists for the rest.
func (h *CreateBatchShipmentCommandHandler) loadShippable(
	ctx context.Context,
	orderIDs []kernel.UUID,
	result *BatchResult,
) ([]*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	var shippable []*order.Order
	for _, id := range orderIDs {
		aggregate, err := uow.OrderRepository().Get(ctx, id)
		if err != nil {
			if errors.Is(err, errs.ErrObjectNotFound) {
				result.Errors = append(result.Errors, BatchError{OrderID: id, Reason: "order not found"})
				continue
			}
			return nil, err
		}

		if !aggregate.IsPendingRouting() {
			result.Skipped = append(result.Skipped, id)
			continue
		}

		if !aggregate.Destination().IsVerified() {
			result.Errors = append(result.Errors, BatchError{OrderID: id, Reason: "address could not be verified"})
			continue
		}

		shippable = append(shippable, aggregate)
	}

	return shippable, nil
}

// shipGroup purchases one label for the group and commits its orders in a
// dedicated transaction.
func (h *CreateBatchShipmentCommandHandler) shipGroup(
	ctx context.Context,
	cmd CreateBatchShipmentCommand,
	group services.ShipmentGroup,
	rateLimited *atomic.Bool,
	serialize *sync.Mutex,
) (*shipment.Shipment, error) {
	label, err := h.purchaseWithRetry(ctx, cmd, group, rateLimited, serialize)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	created, err := shipment.NewShipment(
		kernel.NewUUID(),
		group.OrderIDs(),
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

	for _, member := range group.Orders {
		if err = member.MarkShipPending(); err != nil {
			return nil, err
		}
		if err = uow.OrderRepository().Update(ctx, member); err != nil {
			return nil, err
		}
	}

	if err = uow.ShipmentRepository().Add(ctx, created); err != nil {
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
		OccurredAt:     created.CreatedAt(),
	}); err != nil {
		h.logger.Warn("shipment created event not published",
			"shipment_id", created.ID().String(), "error", err)
	}

	return created, nil
}

// purchaseWithRetry buys the group's label, serializing carrier calls once
// the carrier has signaled rate limiting and retrying retryable failures up
// to the configured attempt count.
func (h *CreateBatchShipmentCommandHandler) purchaseWithRetry(
	ctx context.Context,
	cmd CreateBatchShipmentCommand,
	group services.ShipmentGroup,
	rateLimited *atomic.Bool,
	serialize *sync.Mutex,
) (ports.PurchasedLabel, error) {
	req := ports.PurchaseRequest{
		Origin:      h.origin,
		Destination: group.Destination,
		Parcel:      group.Parcel,
		Rate:        ports.CarrierRate{Carrier: cmd.Carrier(), Service: cmd.Service()},
		Reference:   group.OrderIDs()[0].String(),
	}

	var label ports.PurchasedLabel
	var err error

	for attempt := 0; attempt <= h.retryAttempts; attempt++ {
		if rateLimited.Load() {
			serialize.Lock()
			label, err = h.gateway.PurchaseLabel(ctx, req)
			serialize.Unlock()
		} else {
			label, err = h.gateway.PurchaseLabel(ctx, req)
		}

		if err == nil {
			return label, nil
		}

		if errors.Is(err, ports.ErrCarrierRateLimited) {
			rateLimited.Store(true)
			continue
		}

		if !ports.IsTransient(err) {
			return ports.PurchasedLabel{}, err
		}
	}

	return ports.PurchasedLabel{}, err
}

// reasonFor renders a carrier failure as an operator-facing reason line.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, ports.ErrAddressInvalid):
		return "address could not be verified"
	case errors.Is(err, ports.ErrCarrierRejected):
		return "carrier rejected the shipment"
	case errors.Is(err, ports.ErrInsufficientBalance):
		return "carrier account has insufficient balance"
	case errors.Is(err, ports.ErrCarrierRateLimited):
		return "carrier rate limit exceeded"
	case ports.IsTransient(err):
		return "transient carrier failure"
	default:
		return err.Error()
	}
}

package commands_test

import (
	"context"
	"log/slog"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func purchasedLabel() ports.PurchasedLabel {
	return ports.PurchasedLabel{
		Carrier:        "ups",
		Service:        "standard",
		TrackingNumber: "1Z999AA10123456784",
		TrackingURL:    "https://track.example/1Z999AA10123456784",
		LabelURL:       "https://labels.example/abc.pdf",
		CostCents:      1250,
	}
}

func newCreateShipmentHandler(
	t *testing.T,
	factory commands.ShipmentUoWFactory,
	gateway *MockCarrierGateway,
	publisher *MockEventPublisher,
) commands.CreateShipmentCommandHandler {
	t.Helper()
	handler, err := commands.NewCreateShipmentCommandHandler(
		factory, gateway, publisher, warehouseAddress(t), slog.Default())
	require.NoError(t, err)
	return handler
}

func TestCreateShipmentCommandHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("purchases label and commits routing", func(t *testing.T) {
		aggregate := orderInStatus(t, order.PendingRouting)

		orderRepo := &MockOrderRepository{}
		shipmentRepo := &MockShipmentRepository{}
		uow := &MockUoW{}
		factory := &MockShipmentUoWFactory{}
		gateway := &MockCarrierGateway{}
		publisher := &MockEventPublisher{}

		factory.On("Create").Return(uow).Once()
		uow.On("OrderRepository").Return(orderRepo)
		uow.On("ShipmentRepository").Return(shipmentRepo)
		uow.On("Rollback", ctx).Return(nil)

		mock.InOrder(
			uow.On("Begin", ctx).Return(nil).Once(),
			orderRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
			gateway.On("PurchaseLabel", ctx, mock.AnythingOfType("ports.PurchaseRequest")).
				Return(purchasedLabel(), nil).Once(),
			shipmentRepo.On("Add", ctx, mock.AnythingOfType("*shipment.Shipment")).Return(nil).Once(),
			orderRepo.On("Update", ctx, aggregate).Return(nil).Once(),
			uow.On("Commit", ctx).Return(nil).Once(),
			publisher.On("PublishShipmentCreated", ctx, mock.AnythingOfType("ports.ShipmentCreatedEvent")).
				Return(nil).Once(),
		)

		handler := newCreateShipmentHandler(t, factory, gateway, publisher)
		cmd, err := commands.NewCreateShipmentCommand(aggregate.ID(), "ups", "standard")
		require.NoError(t, err)

		created, err := handler.Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, shipment.LabelCreated, created.Status())
		assert.True(t, created.Covers(aggregate.ID()))
		assert.Equal(t, order.ShipPending, aggregate.Status())
		factory.AssertExpectations(t)
		gateway.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("forced shipment ships a shelf assigned order", func(t *testing.T) {
		aggregate := orderInStatus(t, order.PickupAssigned)

		orderRepo := &MockOrderRepository{}
		shipmentRepo := &MockShipmentRepository{}
		uow := &MockUoW{}
		factory := &MockShipmentUoWFactory{}
		gateway := &MockCarrierGateway{}
		publisher := &MockEventPublisher{}

		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("OrderRepository").Return(orderRepo)
		uow.On("ShipmentRepository").Return(shipmentRepo)
		uow.On("Commit", ctx).Return(nil).Once()
		uow.On("Rollback", ctx).Return(nil)
		orderRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once()
		orderRepo.On("Update", ctx, aggregate).Return(nil).Once()
		shipmentRepo.On("Add", ctx, mock.AnythingOfType("*shipment.Shipment")).Return(nil).Once()
		gateway.On("PurchaseLabel", ctx, mock.Anything).Return(purchasedLabel(), nil).Once()
		publisher.On("PublishShipmentCreated", ctx, mock.MatchedBy(func(e ports.ShipmentCreatedEvent) bool {
			return e.Forced
		})).Return(nil).Once()

		handler := newCreateShipmentHandler(t, factory, gateway, publisher)
		cmd, err := commands.NewForcedShipmentCommand(aggregate.ID(), "ups", "standard")
		require.NoError(t, err)

		_, err = handler.Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, order.ShipPending, aggregate.Status())
		publisher.AssertExpectations(t)
	})

	t.Run("already routed order is rejected without carrier call", func(t *testing.T) {
		aggregate := orderInStatus(t, order.ShipPending)

		orderRepo := &MockOrderRepository{}
		uow := &MockUoW{}
		factory := &MockShipmentUoWFactory{}
		gateway := &MockCarrierGateway{}

		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("OrderRepository").Return(orderRepo)
		uow.On("Rollback", ctx).Return(nil)
		orderRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once()

		handler := newCreateShipmentHandler(t, factory, gateway, &MockEventPublisher{})
		cmd, err := commands.NewCreateShipmentCommand(aggregate.ID(), "ups", "standard")
		require.NoError(t, err)

		_, err = handler.Handle(ctx, cmd)

		require.ErrorIs(t, err, commands.ErrOrderNotShippable)
		gateway.AssertNotCalled(t, "PurchaseLabel", mock.Anything, mock.Anything)
	})

	t.Run("forced shipment requires a shelf assigned order", func(t *testing.T) {
		aggregate := orderInStatus(t, order.PendingRouting)

		orderRepo := &MockOrderRepository{}
		uow := &MockUoW{}
		factory := &MockShipmentUoWFactory{}

		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("OrderRepository").Return(orderRepo)
		uow.On("Rollback", ctx).Return(nil)
		orderRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once()

		handler := newCreateShipmentHandler(t, factory, &MockCarrierGateway{}, &MockEventPublisher{})
		cmd, err := commands.NewForcedShipmentCommand(aggregate.ID(), "ups", "standard")
		require.NoError(t, err)

		_, err = handler.Handle(ctx, cmd)

		require.ErrorIs(t, err, commands.ErrOrderNotShippable)
	})

	t.Run("carrier failure leaves nothing persisted", func(t *testing.T) {
		aggregate := orderInStatus(t, order.PendingRouting)

		orderRepo := &MockOrderRepository{}
		shipmentRepo := &MockShipmentRepository{}
		uow := &MockUoW{}
		factory := &MockShipmentUoWFactory{}
		gateway := &MockCarrierGateway{}

		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("OrderRepository").Return(orderRepo)
		uow.On("Rollback", ctx).Return(nil).Once()
		orderRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once()
		gateway.On("PurchaseLabel", ctx, mock.Anything).
			Return(ports.PurchasedLabel{}, ports.ErrInsufficientBalance).Once()

		handler := newCreateShipmentHandler(t, factory, gateway, &MockEventPublisher{})
		cmd, err := commands.NewCreateShipmentCommand(aggregate.ID(), "ups", "standard")
		require.NoError(t, err)

		_, err = handler.Handle(ctx, cmd)

		require.ErrorIs(t, err, ports.ErrInsufficientBalance)
		assert.Equal(t, order.PendingRouting, aggregate.Status())
		shipmentRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
		uow.AssertNotCalled(t, "Commit", mock.Anything)
	})
}

func TestNewCreateShipmentCommand(t *testing.T) {
	aggregate := orderInStatus(t, order.PendingRouting)

	_, err := commands.NewCreateShipmentCommand(aggregate.ID(), "", "standard")
	require.ErrorIs(t, err, commands.ErrCarrierIsRequired)

	_, err = commands.NewCreateShipmentCommand(aggregate.ID(), "ups", "")
	require.ErrorIs(t, err, commands.ErrServiceIsRequired)

	var zero commands.CreateShipmentCommand
	require.ErrorIs(t, zero.Validate(), commands.ErrCreateShipmentCommandIsNotConstructed)
}

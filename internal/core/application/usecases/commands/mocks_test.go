package commands_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/shelf"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockShipmentRepository struct{ mock.Mock }

func (m *MockShipmentRepository) Add(ctx context.Context, s *shipment.Shipment) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShipmentRepository) Update(ctx context.Context, s *shipment.Shipment) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShipmentRepository) Get(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) GetByTrackingNumber(ctx context.Context, carrier, trackingNumber string) (*shipment.Shipment, error) {
	args := m.Called(ctx, carrier, trackingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) AddTrackingEvent(ctx context.Context, e *shipment.TrackingEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

type MockShelfRepository struct{ mock.Mock }

func (m *MockShelfRepository) Add(ctx context.Context, s *shelf.Shelf) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShelfRepository) Get(ctx context.Context, id kernel.UUID) (*shelf.Shelf, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shelf.Shelf), args.Error(1)
}

func (m *MockShelfRepository) GetAll(ctx context.Context) ([]*shelf.Shelf, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shelf.Shelf), args.Error(1)
}

func (m *MockShelfRepository) ClaimSlot(ctx context.Context, shelfID kernel.UUID) error {
	args := m.Called(ctx, shelfID)
	return args.Error(0)
}

func (m *MockShelfRepository) ReleaseSlot(ctx context.Context, shelfID kernel.UUID) error {
	args := m.Called(ctx, shelfID)
	return args.Error(0)
}

func (m *MockShelfRepository) AddAssignment(ctx context.Context, a *shelf.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockShelfRepository) UpdateAssignment(ctx context.Context, a *shelf.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockShelfRepository) GetAssignment(ctx context.Context, id kernel.UUID) (*shelf.Assignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shelf.Assignment), args.Error(1)
}

func (m *MockShelfRepository) GetActiveAssignmentByOrder(ctx context.Context, orderID kernel.UUID) (*shelf.Assignment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shelf.Assignment), args.Error(1)
}

func (m *MockShelfRepository) GetAssignmentsOlderThan(ctx context.Context, cutoff time.Time) ([]*shelf.Assignment, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shelf.Assignment), args.Error(1)
}

// MockUoW satisfies ShipmentUoW, ShelfUoW and FulfillmentUoW.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) ShipmentRepository() ports.ShipmentRepository {
	args := m.Called()
	return args.Get(0).(ports.ShipmentRepository)
}

func (m *MockUoW) ShelfRepository() ports.ShelfRepository {
	args := m.Called()
	return args.Get(0).(ports.ShelfRepository)
}

type MockShipmentUoWFactory struct{ mock.Mock }

func (m *MockShipmentUoWFactory) Create() commands.ShipmentUoW {
	args := m.Called()
	return args.Get(0).(commands.ShipmentUoW)
}

type MockShelfUoWFactory struct{ mock.Mock }

func (m *MockShelfUoWFactory) Create() commands.ShelfUoW {
	args := m.Called()
	return args.Get(0).(commands.ShelfUoW)
}

type MockFulfillmentUoWFactory struct{ mock.Mock }

func (m *MockFulfillmentUoWFactory) Create() commands.FulfillmentUoW {
	args := m.Called()
	return args.Get(0).(commands.FulfillmentUoW)
}

type MockCarrierGateway struct{ mock.Mock }

func (m *MockCarrierGateway) GetRate(ctx context.Context, req ports.RateRequest) (ports.CarrierRate, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.CarrierRate), args.Error(1)
}

func (m *MockCarrierGateway) PurchaseLabel(ctx context.Context, req ports.PurchaseRequest) (ports.PurchasedLabel, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.PurchasedLabel), args.Error(1)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) PublishShipmentCreated(ctx context.Context, e ports.ShipmentCreatedEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishShipmentStatusChanged(ctx context.Context, e ports.ShipmentStatusChangedEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishPickupAssigned(ctx context.Context, e ports.PickupAssignedEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishStalePickupEscalated(ctx context.Context, e ports.StalePickupEscalatedEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

type MockShipmentCreator struct{ mock.Mock }

func (m *MockShipmentCreator) Handle(ctx context.Context, cmd commands.CreateShipmentCommand) (*shipment.Shipment, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

func verifiedAddress(t *testing.T) kernel.Address {
	t.Helper()
	addr, err := kernel.NewGeocodedAddress("Markt 87", "Delft", "2611", "NL", 52.0116, 4.3571)
	require.NoError(t, err)
	return addr
}

func warehouseAddress(t *testing.T) kernel.Address {
	t.Helper()
	addr, err := kernel.NewGeocodedAddress("Wilhelminakade 1", "Rotterdam", "3072", "NL", 51.9072, 4.4887)
	require.NoError(t, err)
	return addr
}

func smallParcel(t *testing.T) kernel.Parcel {
	t.Helper()
	parcel, err := kernel.NewParcel(1200, 30, 20, 10, 1)
	require.NoError(t, err)
	return parcel
}

func orderInStatus(t *testing.T, status order.Status) *order.Order {
	t.Helper()
	aggregate, err := order.RestoreOrder(
		kernel.NewUUID(), verifiedAddress(t), smallParcel(t), "standard", false, status, time.Now())
	require.NoError(t, err)
	return aggregate
}

func labeledShipment(t *testing.T, orderIDs ...kernel.UUID) *shipment.Shipment {
	t.Helper()
	if len(orderIDs) == 0 {
		orderIDs = []kernel.UUID{kernel.NewUUID()}
	}
	s, err := shipment.NewShipment(
		kernel.NewUUID(), orderIDs, "ups", "standard",
		"1Z999AA10123456784", "https://track.example/1Z999AA10123456784",
		"https://labels.example/abc.pdf", 1250, time.Now(),
	)
	require.NoError(t, err)
	return s
}

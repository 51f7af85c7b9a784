package queries_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/shelf"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/assert"
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

type MockCarrierGateway struct{ mock.Mock }

func (m *MockCarrierGateway) GetRate(ctx context.Context, req ports.RateRequest) (ports.CarrierRate, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.CarrierRate), args.Error(1)
}

func (m *MockCarrierGateway) PurchaseLabel(ctx context.Context, req ports.PurchaseRequest) (ports.PurchasedLabel, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.PurchasedLabel), args.Error(1)
}

func TestGetRoutingRecommendationQueryHandler_Handle(t *testing.T) {
	ctx := context.Background()

	origin, err := kernel.NewGeocodedAddress("Wilhelminakade 1", "Rotterdam", "3072", "NL", 51.9072, 4.4887)
	require.NoError(t, err)
	nearby, err := kernel.NewGeocodedAddress("Markt 87", "Delft", "2611", "NL", 52.0116, 4.3571)
	require.NoError(t, err)
	parcel, err := kernel.NewParcel(1200, 30, 20, 10, 1)
	require.NoError(t, err)

	candidates := []ports.CandidateService{{Carrier: "ups", Service: "standard"}}

	newHandler := func(
		t *testing.T,
		orders *MockOrderRepository,
		shelves *MockShelfRepository,
		gateway *MockCarrierGateway,
	) queries.GetRoutingRecommendationQueryHandler {
		t.Helper()
		shopper, err := services.NewRateShopper(gateway, 2, time.Second, slog.Default())
		require.NoError(t, err)
		advisor, err := services.NewRoutingAdvisor(25, 500)
		require.NoError(t, err)
		handler, err := queries.NewGetRoutingRecommendationQueryHandler(
			orders, shelves, shopper, advisor, origin, candidates)
		require.NoError(t, err)
		return handler
	}

	freeShelf := func(t *testing.T) *shelf.Shelf {
		t.Helper()
		s, err := shelf.NewShelf(kernel.NewUUID(), "A-01", "Shelf A-01", 4)
		require.NoError(t, err)
		return s
	}

	t.Run("nearby expensive lane recommends pickup", func(t *testing.T) {
		aggregate, err := order.NewOrder(kernel.NewUUID(), nearby, parcel, "standard", false, time.Now())
		require.NoError(t, err)

		orders := &MockOrderRepository{}
		shelves := &MockShelfRepository{}
		gateway := &MockCarrierGateway{}

		orders.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once()
		shelves.On("GetAll", ctx).Return([]*shelf.Shelf{freeShelf(t)}, nil).Once()
		gateway.On("GetRate", mock.Anything, mock.Anything).
			Return(ports.CarrierRate{Carrier: "ups", Service: "standard", CostCents: 1200, EstimatedDays: 3}, nil).Once()

		query, err := queries.NewGetRoutingRecommendationQuery(aggregate.ID())
		require.NoError(t, err)

		response, err := newHandler(t, orders, shelves, gateway).Handle(ctx, query)

		require.NoError(t, err)
		assert.Equal(t, "pickup", response.Recommendation)
		assert.Equal(t, "pickup_savings", response.Reason)
		assert.Equal(t, int64(1200), response.CostCents)
		// The single quote round feeds both shopping and advising.
		gateway.AssertNumberOfCalls(t, "GetRate", 1)
	})

	t.Run("full shelves flip the same order to ship", func(t *testing.T) {
		aggregate, err := order.NewOrder(kernel.NewUUID(), nearby, parcel, "standard", false, time.Now())
		require.NoError(t, err)

		fullShelf, err := shelf.RestoreShelf(kernel.NewUUID(), "A-01", "Shelf A-01", 4, 4)
		require.NoError(t, err)

		orders := &MockOrderRepository{}
		shelves := &MockShelfRepository{}
		gateway := &MockCarrierGateway{}

		orders.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once()
		shelves.On("GetAll", ctx).Return([]*shelf.Shelf{fullShelf}, nil).Once()
		gateway.On("GetRate", mock.Anything, mock.Anything).
			Return(ports.CarrierRate{Carrier: "ups", Service: "standard", CostCents: 1200, EstimatedDays: 3}, nil).Once()

		query, err := queries.NewGetRoutingRecommendationQuery(aggregate.ID())
		require.NoError(t, err)

		response, err := newHandler(t, orders, shelves, gateway).Handle(ctx, query)

		require.NoError(t, err)
		assert.Equal(t, "ship", response.Recommendation)
		assert.Equal(t, "no_shelf_capacity", response.Reason)
	})

	t.Run("all quotes failing surfaces rate unavailable", func(t *testing.T) {
		aggregate, err := order.NewOrder(kernel.NewUUID(), nearby, parcel, "standard", false, time.Now())
		require.NoError(t, err)

		fullShelf, err := shelf.RestoreShelf(kernel.NewUUID(), "A-01", "Shelf A-01", 4, 4)
		require.NoError(t, err)

		orders := &MockOrderRepository{}
		shelves := &MockShelfRepository{}
		gateway := &MockCarrierGateway{}

		orders.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once()
		shelves.On("GetAll", ctx).Return([]*shelf.Shelf{fullShelf}, nil).Once()
		gateway.On("GetRate", mock.Anything, mock.Anything).
			Return(ports.CarrierRate{}, ports.ErrCarrierRejected).Once()

		query, err := queries.NewGetRoutingRecommendationQuery(aggregate.ID())
		require.NoError(t, err)

		_, err = newHandler(t, orders, shelves, gateway).Handle(ctx, query)

		require.ErrorIs(t, err, ports.ErrRateUnavailable)
	})
}

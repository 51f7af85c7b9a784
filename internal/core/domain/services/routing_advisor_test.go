package services_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRadiusKm       = 25.0
	testThresholdCents = 500
)

func newAdvisor(t *testing.T) services.RoutingAdvisor {
	t.Helper()
	advisor, err := services.NewRoutingAdvisor(testRadiusKm, testThresholdCents)
	require.NoError(t, err)
	return advisor
}

func warehouseOrigin(t *testing.T) kernel.Address {
	t.Helper()
	origin, err := kernel.NewGeocodedAddress("Wilhelminakade 1", "Rotterdam", "3072", "NL", 51.9072, 4.4887)
	require.NoError(t, err)
	return origin
}

// Delft is roughly 13 km from the Rotterdam warehouse, inside the radius.
func nearbyAddress(t *testing.T) kernel.Address {
	t.Helper()
	addr, err := kernel.NewGeocodedAddress("Markt 87", "Delft", "2611", "NL", 52.0116, 4.3571)
	require.NoError(t, err)
	return addr
}

// Amsterdam is roughly 57 km out, beyond the radius.
func farAddress(t *testing.T) kernel.Address {
	t.Helper()
	addr, err := kernel.NewGeocodedAddress("Dam 1", "Amsterdam", "1012", "NL", 52.3731, 4.8932)
	require.NoError(t, err)
	return addr
}

func pendingOrder(t *testing.T, destination kernel.Address, pickupRequested bool) *order.Order {
	t.Helper()
	parcel, err := kernel.NewParcel(1200, 30, 20, 10, 1)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), destination, parcel, "standard", pickupRequested, time.Now())
	require.NoError(t, err)
	return o
}

func ratesCosting(costCents int64) services.RateShopResult {
	return services.RateShopResult{
		Rates: []ports.CarrierRate{{Carrier: "ups", Service: "standard", CostCents: costCents, EstimatedDays: 3}},
	}
}

func TestRoutingAdvisor_Recommend(t *testing.T) {
	advisor := newAdvisor(t)
	origin := warehouseOrigin(t)

	t.Run("explicit pickup request wins when a slot is free", func(t *testing.T) {
		o := pendingOrder(t, farAddress(t), true)

		rec, err := advisor.Recommend(o, origin, ratesCosting(1200), true)

		require.NoError(t, err)
		assert.Equal(t, services.RoutePickup, rec.Mode)
		assert.Equal(t, services.ReasonCustomerRequestedPickup, rec.Reason)
	})

	t.Run("nearby order with expensive shipping is asked to collect", func(t *testing.T) {
		o := pendingOrder(t, nearbyAddress(t), false)

		rec, err := advisor.Recommend(o, origin, ratesCosting(1200), true)

		require.NoError(t, err)
		assert.Equal(t, services.RoutePickup, rec.Mode)
		assert.Equal(t, services.ReasonPickupSavings, rec.Reason)
		require.NotNil(t, rec.Rate)
		assert.Equal(t, int64(1200), rec.Rate.CostCents)
		assert.InDelta(t, 13, rec.DistanceKm, 3)
	})

	t.Run("full shelves force shipping even nearby", func(t *testing.T) {
		o := pendingOrder(t, nearbyAddress(t), false)

		rec, err := advisor.Recommend(o, origin, ratesCosting(1200), false)

		require.NoError(t, err)
		assert.Equal(t, services.RouteShip, rec.Mode)
		assert.Equal(t, services.ReasonNoShelfCapacity, rec.Reason)
	})

	t.Run("pickup request falls through to shipping without capacity", func(t *testing.T) {
		o := pendingOrder(t, nearbyAddress(t), true)

		rec, err := advisor.Recommend(o, origin, ratesCosting(1200), false)

		require.NoError(t, err)
		assert.Equal(t, services.RouteShip, rec.Mode)
		assert.Equal(t, services.ReasonNoShelfCapacity, rec.Reason)
	})

	t.Run("unverified destination always ships", func(t *testing.T) {
		unverified, err := kernel.NewAddress("Somestraat 1", "Nowhere", "9999", "NL")
		require.NoError(t, err)
		o := pendingOrder(t, unverified, true)

		rec, err := advisor.Recommend(o, origin, ratesCosting(300), true)

		require.NoError(t, err)
		assert.Equal(t, services.RouteShip, rec.Mode)
		assert.Equal(t, services.ReasonAddressUnverified, rec.Reason)
	})

	t.Run("destination outside the radius ships", func(t *testing.T) {
		o := pendingOrder(t, farAddress(t), false)

		rec, err := advisor.Recommend(o, origin, ratesCosting(1200), true)

		require.NoError(t, err)
		assert.Equal(t, services.RouteShip, rec.Mode)
		assert.Equal(t, services.ReasonOutsideServiceRadius, rec.Reason)
		assert.InDelta(t, 57, rec.DistanceKm, 5)
	})

	t.Run("cheap shipping beats pickup savings", func(t *testing.T) {
		o := pendingOrder(t, nearbyAddress(t), false)

		rec, err := advisor.Recommend(o, origin, ratesCosting(300), true)

		require.NoError(t, err)
		assert.Equal(t, services.RouteShip, rec.Mode)
		assert.Equal(t, services.ReasonCheapestRate, rec.Reason)
	})

	t.Run("shipping without any rate is unavailable", func(t *testing.T) {
		o := pendingOrder(t, farAddress(t), false)

		_, err := advisor.Recommend(o, origin, services.RateShopResult{}, true)

		require.ErrorIs(t, err, ports.ErrRateUnavailable)
	})

	t.Run("committed order is not re-advised", func(t *testing.T) {
		o := pendingOrder(t, nearbyAddress(t), false)
		require.NoError(t, o.AssignPickup())

		_, err := advisor.Recommend(o, origin, ratesCosting(1200), true)

		require.ErrorIs(t, err, services.ErrOrderAlreadyRouted)
	})

	t.Run("partial quote round is surfaced", func(t *testing.T) {
		o := pendingOrder(t, farAddress(t), false)
		rates := ratesCosting(1200)
		rates.Partial = true

		rec, err := advisor.Recommend(o, origin, rates, true)

		require.NoError(t, err)
		assert.True(t, rec.Partial)
	})
}

func TestNewRoutingAdvisor(t *testing.T) {
	_, err := services.NewRoutingAdvisor(0, 100)
	require.Error(t, err)

	_, err = services.NewRoutingAdvisor(25, -1)
	require.Error(t, err)
}

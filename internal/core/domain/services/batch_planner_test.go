package services_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchOrder(t *testing.T, zip, serviceLevel string, weightGrams int) *order.Order {
	t.Helper()
	addr, err := kernel.NewGeocodedAddress("Teststraat 1", "Delft", zip, "NL", 52.0116, 4.3571)
	require.NoError(t, err)
	parcel, err := kernel.NewParcel(weightGrams, 30, 20, 10, 1)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), addr, parcel, serviceLevel, false, time.Now())
	require.NoError(t, err)
	return o
}

func TestBatchPlanner_Plan(t *testing.T) {
	planner, err := services.NewBatchPlanner(3, 10000)
	require.NoError(t, err)

	t.Run("orders sharing a postal prefix travel together", func(t *testing.T) {
		a := batchOrder(t, "2611", "standard", 2000)
		b := batchOrder(t, "2612", "standard", 3000)
		c := batchOrder(t, "1012", "standard", 2000)

		groups, err := planner.Plan([]*order.Order{a, b, c})

		require.NoError(t, err)
		require.Len(t, groups, 2)
		// Keys sort lexicographically, the 101 prefix group comes first.
		assert.Equal(t, []kernel.UUID{c.ID()}, groups[0].OrderIDs())
		assert.Equal(t, []kernel.UUID{a.ID(), b.ID()}, groups[1].OrderIDs())
		assert.Equal(t, 5000, groups[1].Parcel.WeightGrams())
		assert.Equal(t, 2, groups[1].Parcel.ItemCount())
	})

	t.Run("weight limit splits a prefix group", func(t *testing.T) {
		a := batchOrder(t, "2611", "standard", 6000)
		b := batchOrder(t, "2611", "standard", 6000)
		c := batchOrder(t, "2611", "standard", 3000)

		groups, err := planner.Plan([]*order.Order{a, b, c})

		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, []kernel.UUID{a.ID()}, groups[0].OrderIDs())
		assert.Equal(t, []kernel.UUID{b.ID(), c.ID()}, groups[1].OrderIDs())
	})

	t.Run("an overweight order gets its own group", func(t *testing.T) {
		heavy := batchOrder(t, "2611", "standard", 15000)

		groups, err := planner.Plan([]*order.Order{heavy})

		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, 15000, groups[0].Parcel.WeightGrams())
	})

	t.Run("different service levels never mix", func(t *testing.T) {
		a := batchOrder(t, "2611", "express", 2000)
		b := batchOrder(t, "2611", "standard", 2000)

		groups, err := planner.Plan([]*order.Order{a, b})

		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, "express", groups[0].ServiceLevel)
		assert.Equal(t, "standard", groups[1].ServiceLevel)
	})

	t.Run("empty batch is rejected", func(t *testing.T) {
		_, err := planner.Plan(nil)
		require.Error(t, err)
	})
}

func TestNewBatchPlanner(t *testing.T) {
	_, err := services.NewBatchPlanner(0, 10000)
	require.Error(t, err)

	_, err = services.NewBatchPlanner(3, 0)
	require.Error(t, err)
}
